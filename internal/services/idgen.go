package services

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/soaringjerry/Align/internal/models"
)

// IDGenerator mints identifiers. Build one at startup and hand it to
// whatever creates records.
type IDGenerator interface {
	NewUserID() models.UserID
	NewAnswerID() string
	QuestionID(text string, answers []models.Answer) models.QuestionID
}

// UUIDGenerator uses random UUIDs for users and answers and a blake2b
// digest of the question content for questions, so the same question
// always gets the same ID.
type UUIDGenerator struct {
	// Len truncates UUID-based IDs (dashes removed). Zero keeps all 32 hex chars.
	Len int
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{Len: 12}
}

func (g *UUIDGenerator) short(prefix string) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if g.Len > 0 && g.Len < len(s) {
		s = s[:g.Len]
	}
	return prefix + s
}

func (g *UUIDGenerator) NewUserID() models.UserID { return models.UserID(g.short("u")) }

func (g *UUIDGenerator) NewAnswerID() string { return g.short("a") }

func (g *UUIDGenerator) QuestionID(text string, answers []models.Answer) models.QuestionID {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	h.Write([]byte(strings.TrimSpace(text)))
	for _, a := range answers {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return models.QuestionID("q" + hex.EncodeToString(h.Sum(nil))[:16])
}

var _ IDGenerator = (*UUIDGenerator)(nil)
