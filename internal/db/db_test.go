package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNewCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "chat.db")

	database, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer database.Close()
}

func TestMigrateIdempotent(t *testing.T) {
	database := setupTestDB(t)

	// New already migrated once; a second run must not fail
	if err := database.Migrate(); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}
}

func TestSaveExchange(t *testing.T) {
	database := setupTestDB(t)

	id, err := database.SaveExchange(&models.Exchange{
		SessionID: "s1",
		Message:   "I feel down",
		Reply:     "I'm here for you",
		Model:     "tinyllama",
		Emotion:   "sad",
		RiskProb:  0.12,
	})
	if err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("Expected positive row id, got %d", id)
	}

	var count int
	if err := database.Conn().QueryRow("SELECT COUNT(*) FROM exchanges").Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 exchange, got %d", count)
	}
}

func TestSaveAlert(t *testing.T) {
	database := setupTestDB(t)

	if err := database.SaveAlert("s1", "a worrying message", 0.93); err != nil {
		t.Fatalf("SaveAlert failed: %v", err)
	}

	var sessionID string
	var prob float64
	err := database.Conn().QueryRow("SELECT session_id, risk_prob FROM alerts").Scan(&sessionID, &prob)
	if err != nil {
		t.Fatalf("Alert query failed: %v", err)
	}
	if sessionID != "s1" || prob != 0.93 {
		t.Errorf("Expected (s1, 0.93), got (%s, %v)", sessionID, prob)
	}
}

func TestHistoryOrderAndRoles(t *testing.T) {
	database := setupTestDB(t)

	for i := 1; i <= 3; i++ {
		_, err := database.SaveExchange(&models.Exchange{
			SessionID: "s1",
			Message:   fmt.Sprintf("question %d", i),
			Reply:     fmt.Sprintf("answer %d", i),
		})
		if err != nil {
			t.Fatalf("SaveExchange failed: %v", err)
		}
	}

	turns, err := database.History("s1", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 6 {
		t.Fatalf("Expected 6 turns for 3 exchanges, got %d", len(turns))
	}

	if turns[0].Role != models.RoleUser || turns[0].Content != "question 1" {
		t.Errorf("Expected oldest user turn first, got %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "answer 1" {
		t.Errorf("Expected assistant turn after user, got %+v", turns[1])
	}
	if turns[5].Content != "answer 3" {
		t.Errorf("Expected newest answer last, got %+v", turns[5])
	}
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	database := setupTestDB(t)

	for i := 1; i <= 5; i++ {
		_, err := database.SaveExchange(&models.Exchange{
			SessionID: "s1",
			Message:   fmt.Sprintf("question %d", i),
			Reply:     fmt.Sprintf("answer %d", i),
		})
		if err != nil {
			t.Fatalf("SaveExchange failed: %v", err)
		}
	}

	turns, err := database.History("s1", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("Expected 4 turns for limit 2, got %d", len(turns))
	}
	if turns[0].Content != "question 4" {
		t.Errorf("Limit should keep the newest exchanges, got %+v", turns[0])
	}
	if turns[3].Content != "answer 5" {
		t.Errorf("Expected newest answer last, got %+v", turns[3])
	}
}

func TestHistoryIsolatesSessions(t *testing.T) {
	database := setupTestDB(t)

	if _, err := database.SaveExchange(&models.Exchange{SessionID: "s1", Message: "a", Reply: "b"}); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	if _, err := database.SaveExchange(&models.Exchange{SessionID: "s2", Message: "c", Reply: "d"}); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}

	turns, err := database.History("s1", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 2 || turns[0].Content != "a" {
		t.Errorf("Expected only session s1 turns, got %+v", turns)
	}
}

func TestHistoryEmptySession(t *testing.T) {
	database := setupTestDB(t)

	turns, err := database.History("missing", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Expected no turns for unknown session, got %+v", turns)
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	database := setupTestDB(t)

	for i := 1; i <= 25; i++ {
		_, err := database.SaveExchange(&models.Exchange{
			SessionID: "s1",
			Message:   fmt.Sprintf("question %d", i),
			Reply:     fmt.Sprintf("answer %d", i),
		})
		if err != nil {
			t.Fatalf("SaveExchange failed: %v", err)
		}
	}

	// A non-positive limit falls back to 20 exchanges
	turns, err := database.History("s1", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 40 {
		t.Errorf("Expected 40 turns for default limit, got %d", len(turns))
	}
}
