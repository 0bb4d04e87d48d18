//go:build integration

package integration_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Runs against a server started with `align --sample serve`.
func baseURL() string {
	if v := os.Getenv("ALIGN_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestComparisonJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	var users struct {
		Count int `json:"count"`
		Users []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"users"`
	}
	doGet(t, client, base+"/api/users", &users)
	if users.Count < 2 {
		t.Fatalf("need at least two users, got %d", users.Count)
	}

	var all struct {
		Count int `json:"count"`
	}
	doGet(t, client, base+"/api/comparisons", &all)
	if want := users.Count * (users.Count - 1) / 2; all.Count != want {
		t.Fatalf("expected %d pairs, got %d", want, all.Count)
	}

	var pair struct {
		Common    bool `json:"common"`
		Questions []struct {
			Score *float64 `json:"score"`
		} `json:"questions"`
		Percent *int `json:"percent"`
	}
	a, b := users.Users[0].ID, users.Users[1].ID
	doGet(t, client, fmt.Sprintf("%s/api/comparisons/%s/%s", base, a, b), &pair)
	if pair.Common && pair.Percent != nil && (*pair.Percent < 0 || *pair.Percent > 100) {
		t.Fatalf("percent out of range: %d", *pair.Percent)
	}
	for _, q := range pair.Questions {
		if q.Score != nil && *q.Score < 0 {
			t.Fatalf("incomparable score leaked into response: %v", *q.Score)
		}
	}

	resp, err := client.Get(fmt.Sprintf("%s/api/comparisons/%s/%s", base, a, a))
	if err != nil {
		t.Fatalf("self comparison request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self comparison status %d", resp.StatusCode)
	}

	resp, err = client.Get(base + "/comparisons")
	if err != nil {
		t.Fatalf("comparisons page failed: %v", err)
	}
	defer resp.Body.Close()
	page, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(page), users.Users[0].Name) {
		t.Fatalf("comparisons page status %d body %s", resp.StatusCode, string(page))
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response from %s: %v", url, err)
	}
}
