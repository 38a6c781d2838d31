package adapter

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	if r == nil || r.pool == nil {
		return messaging.Message{}, errors.New("PgMessageRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content, status, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`, m.SenderID, m.ReceiverID, m.Content, messaging.StatusSent).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return messaging.Message{}, err
	}
	m.Status = messaging.StatusSent
	m.IsRead = false
	return m, nil
}

func (r *PgMessageRepository) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgMessageRepository: nil pool")
	}
	// Conditional update: already-delivered/read rows and missing IDs
	// both land in the zero-rows branch.
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages SET status = $2
		WHERE id = $1 AND status = $3
	`, messageID, messaging.StatusDelivered, messaging.StatusSent)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, receiverID, senderID string) ([]int64, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	// Single conditional UPDATE...RETURNING keeps the read-then-write
	// atomic under concurrent calls for the same pair.
	rows, err := r.pool.Query(ctx, `
		UPDATE messages SET is_read = TRUE, status = $3
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE
		RETURNING id
	`, senderID, receiverID, messaging.StatusRead)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgMessageRepository) MarkMessageRead(ctx context.Context, messageID int64, readerID string) (string, bool, error) {
	if r == nil || r.pool == nil {
		return "", false, errors.New("PgMessageRepository: nil pool")
	}
	var senderID string
	err := r.pool.QueryRow(ctx, `
		UPDATE messages SET is_read = TRUE, status = $3
		WHERE id = $1 AND receiver_id = $2 AND is_read = FALSE
		RETURNING sender_id
	`, messageID, readerID, messaging.StatusRead).Scan(&senderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return senderID, true, nil
}

func (r *PgMessageRepository) GetConversation(ctx context.Context, userID, otherUserID string, before *time.Time, limit int) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, status, is_read, created_at
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, userID, otherUserID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Status, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageRepository) ListContacts(ctx context.Context, userID string) ([]messaging.ContactSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		WITH convo AS (
			SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id,
			       content, created_at, sender_id, status
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		)
		SELECT DISTINCT ON (c.partner_id)
		       c.partner_id, c.content, c.created_at, c.sender_id, c.status,
		       (SELECT COUNT(*) FROM messages u
		        WHERE u.sender_id = c.partner_id AND u.receiver_id = $1 AND u.is_read = FALSE)
		FROM convo c
		ORDER BY c.partner_id, c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []messaging.ContactSummary
	for rows.Next() {
		var c messaging.ContactSummary
		if err := rows.Scan(&c.PartnerID, &c.LastMessage, &c.LastTimestamp, &c.LastSenderID, &c.LastStatus, &c.UnreadCount); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DISTINCT ON forces partner ordering; the inbox wants most recent
	// conversations first.
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].LastTimestamp.After(contacts[j].LastTimestamp)
	})
	return contacts, nil
}

func (r *PgMessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE", userID,
	).Scan(&count)
	return count, err
}
