package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centi/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an account of the given type and balance
// (in dollars).
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, accountType models.AccountType, balance float64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		AccountID:      fmt.Sprintf("acct-%d", nextID()),
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           accountType,
		CurrentBalance: balance,
		Currency:       "USD",
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a ledger entry linked to the given provider
// account id; pass nil for a cash transaction. Amount is dollars, negative
// for spending.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, accountID *string, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Amount:    amount,
		Date:      date,
		Source:    models.TransactionSourceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestWeeklyScore creates a score row for the given week.
func CreateTestWeeklyScore(t *testing.T, db *gorm.DB, userID string, scoreDate time.Time, totalScore int) *models.WeeklyScore {
	t.Helper()

	score := &models.WeeklyScore{
		UserID:     userID,
		ScoreDate:  scoreDate,
		TotalScore: totalScore,
	}
	if err := db.Create(score).Error; err != nil {
		t.Fatalf("failed to create test weekly score: %v", err)
	}
	return score
}

// CreateTestMonthlySnapshot creates a snapshot row for the given month.
func CreateTestMonthlySnapshot(t *testing.T, db *gorm.DB, userID string, snapshotDate time.Time, netWorth float64) *models.MonthlySnapshot {
	t.Helper()

	snapshot := &models.MonthlySnapshot{
		UserID:       userID,
		SnapshotDate: snapshotDate,
		NetWorth:     netWorth,
		TotalAssets:  netWorth,
	}
	if err := db.Create(snapshot).Error; err != nil {
		t.Fatalf("failed to create test monthly snapshot: %v", err)
	}
	return snapshot
}
