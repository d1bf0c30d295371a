package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPasswordResetService_Start_UnknownUserStaysQuiet(t *testing.T) {
	users := NewUserService(&fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowWithError(noRowsErr())
		},
	})

	svc := NewPasswordResetService(&fakeDB{}, users)
	token, err := svc.Start(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Fatal("unknown users must not receive a token")
	}
}

func TestPasswordResetService_Start_InvalidatesEarlierTokens(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			now := timeNow()
			return rowFromValues(uuid.New(), "Bold", "bold", "b@example.com", "h", "", now, now)
		},
	}
	var execs []string
	db.ExecFunc = func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
		execs = append(execs, sql)
		if args[0] != "bold" {
			t.Fatalf("expected normalized key, got %v", args[0])
		}
		return fakeCommandTag{rowsAffected: 1}, nil
	}

	svc := NewPasswordResetService(db, NewUserService(db))
	token, err := svc.Start(context.Background(), "Bold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if len(execs) != 2 ||
		!strings.Contains(execs[0], "DELETE FROM password_resets") ||
		!strings.Contains(execs[1], "INSERT INTO password_resets") {
		t.Fatalf("unexpected statements: %v", execs)
	}
}

func TestPasswordResetService_Verify_ExpiredToken(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), "bold", "hash", timeNow().Add(-time.Minute), timeNow())
		},
	}

	svc := NewPasswordResetService(db, NewUserService(db))
	err := svc.Verify(context.Background(), "token")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestPasswordResetService_Verify_UnknownToken(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowWithError(noRowsErr())
		},
	}

	svc := NewPasswordResetService(db, NewUserService(db))
	err := svc.Verify(context.Background(), "token")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestPasswordResetService_Finish_UpdatesPasswordAndConsumesToken(t *testing.T) {
	resetID := uuid.New()
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(resetID, "bold", "hash", timeNow().Add(10*time.Minute), timeNow())
		},
	}
	var execs []string
	db.ExecFunc = func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
		execs = append(execs, sql)
		if strings.Contains(sql, "UPDATE users") {
			if args[0] != "newhash" || args[1] != "bold" {
				t.Fatalf("unexpected update args: %v", args)
			}
		}
		if strings.Contains(sql, "DELETE FROM password_resets") {
			if args[0] != resetID {
				t.Fatalf("expected the reset row deleted by id, got %v", args)
			}
		}
		return fakeCommandTag{rowsAffected: 1}, nil
	}

	svc := NewPasswordResetService(db, NewUserService(db))
	if err := svc.Finish(context.Background(), "token", "newhash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(execs) != 2 ||
		!strings.Contains(execs[0], "UPDATE users") ||
		!strings.Contains(execs[1], "DELETE FROM password_resets") {
		t.Fatalf("unexpected statements: %v", execs)
	}
}
