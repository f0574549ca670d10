package repository

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Keyed SQL backends store one JSON document per ticket. The version
// column is authoritative over the document's own field.

func encodeTicketDocument(t domain.Ticket) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode ticket %s: %w", t.ID, err)
	}
	return raw, nil
}

func decodeTicketDocument(raw []byte, version int64) (domain.Ticket, error) {
	var t domain.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.Ticket{}, err
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	t.Version = version
	return t, nil
}

// seedInsertOrder returns the seed reversed so that, with increasing seq,
// the first seed ticket ends up newest.
func seedInsertOrder(seed []domain.Ticket) []domain.Ticket {
	prepared := prepareSeed(seed)
	out := make([]domain.Ticket, 0, len(prepared))
	for i := len(prepared) - 1; i >= 0; i-- {
		out = append(out, prepared[i])
	}
	return out
}
