package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TicketIDPrefix prefixes every sequential ticket id.
const TicketIDPrefix = "TKT-"

// FormatTicketID renders n as TKT-NNN.
func FormatTicketID(n int) string {
	return fmt.Sprintf("%s%03d", TicketIDPrefix, n)
}

// NextTicketID returns the id after the highest numeric suffix in ids.
// Ids without a numeric suffix are ignored.
func NextTicketID(ids []string) string {
	max := 0
	for _, id := range ids {
		num, err := strconv.Atoi(strings.TrimPrefix(id, TicketIDPrefix))
		if err != nil {
			continue
		}
		if num > max {
			max = num
		}
	}
	return FormatTicketID(max + 1)
}
