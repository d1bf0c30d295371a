package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/battulga/naiznet/internal/models"
)

var ErrMessageValidation = errors.New("message body is required")

// MessageService stores direct messages. Delivery is poll/reload based;
// there is no push channel.
type MessageService struct {
	db DBConn
}

func NewMessageService(db DBConn) *MessageService {
	return &MessageService{db: db}
}

func (s *MessageService) Send(ctx context.Context, from, to, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if models.UsernameKey(from) == "" || models.UsernameKey(to) == "" || body == "" {
		return nil, ErrMessageValidation
	}

	msg := &models.Message{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO messages (sender, sender_key, recipient, recipient_key, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, sender, recipient, body, created_at`,
		from, models.UsernameKey(from), to, models.UsernameKey(to), body,
	).Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Body, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	return msg, nil
}

// Conversation returns the full exchange between two users, oldest first.
func (s *MessageService) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	aKey := models.UsernameKey(a)
	bKey := models.UsernameKey(b)
	rows, err := s.db.Query(ctx,
		`SELECT id, sender, recipient, body, created_at FROM messages
		 WHERE (sender_key = $1 AND recipient_key = $2)
		    OR (sender_key = $2 AND recipient_key = $1)
		 ORDER BY created_at`,
		aKey, bKey,
	)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversation: %w", err)
	}
	return messages, nil
}
