package pgconsole

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Storage) AppendTransition(ctx context.Context, rec models.TransitionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var payload []byte
	if len(rec.Payload) > 0 {
		b, err := json.Marshal(rec.Payload)
		if err != nil {
			return errors.Wrap(err, "marshal payload")
		}
		payload = b
	}

	_, err := s.db.Exec(ctx, `
INSERT INTO transition_log (id, shipment_id, action, from_status, to_status, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
`, rec.ID, rec.ShipmentID, rec.Action, string(rec.From), string(rec.To), payload, rec.CreatedAt)
	return errors.Wrap(err, "insert transition")
}

// ListTransitions returns the journal of one shipment, newest first.
func (s *Storage) ListTransitions(ctx context.Context, shipmentID string, limit, offset int) ([]models.TransitionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, `
SELECT id, shipment_id, action, from_status, to_status, payload, created_at
FROM transition_log
WHERE shipment_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3
`, shipmentID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "select transitions")
	}
	defer rows.Close()

	out := []models.TransitionRecord{}
	for rows.Next() {
		var r models.TransitionRecord
		var from, to string
		var payload []byte
		if err := rows.Scan(&r.ID, &r.ShipmentID, &r.Action, &from, &to, &payload, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan transition")
		}
		r.From = models.Status(from)
		r.To = models.Status(to)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &r.Payload); err != nil {
				return nil, errors.Wrap(err, "decode payload")
			}
		}
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
