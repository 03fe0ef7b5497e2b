package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateKeyLayout is the calendar-date format used for all period filtering.
const DateKeyLayout = "2006-01-02"

// DateKeyFromTime renders t as a business-local calendar date.
func DateKeyFromTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateKeyLayout)
}

// ValidDateKey reports whether s parses as a YYYY-MM-DD date.
func ValidDateKey(s string) bool {
	_, err := time.Parse(DateKeyLayout, s)
	return err == nil
}

// EntryInput carries the typed fields for constructing one ledger entry.
// AccountID is required when Channel is bank; DateKey defaults to "today"
// in the business timezone when empty.
type EntryInput struct {
	Type        TransactionType
	Amount      float64
	Direction   Direction
	Channel     Channel
	Description string
	AccountID   string
	EntityID    string
	PartnerID   string
	PartnerName string
	DateKey     string
	ReferenceID string
}

// Factory constructs well-formed ledger entries. It owns id generation and
// timestamping; appending to a store is the caller's responsibility so one
// user action can batch several linked entries.
type Factory struct {
	now func() time.Time
	loc *time.Location
}

// NewFactory returns a factory stamping entries in the given business
// location.
func NewFactory(loc *time.Location) *Factory {
	if loc == nil {
		loc = time.Local
	}
	return &Factory{now: time.Now, loc: loc}
}

// WithNow overrides the clock, used by tests and the migrator.
func (f *Factory) WithNow(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

// Location exposes the business timezone.
func (f *Factory) Location() *time.Location {
	return f.loc
}

// Today returns the current business-local date key.
func (f *Factory) Today() string {
	return DateKeyFromTime(f.now(), f.loc)
}

// Create builds a fresh entry. Malformed input is rejected here so invalid
// entries are never representable in the store.
func (f *Factory) Create(in EntryInput) (Entry, error) {
	if !in.Type.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown transaction type %q", ErrMalformedEntry, in.Type)
	}
	if in.Amount < 0 {
		return Entry{}, fmt.Errorf("%w: negative amount %.2f", ErrMalformedEntry, in.Amount)
	}
	if !in.Direction.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown direction %q", ErrMalformedEntry, in.Direction)
	}
	if !in.Channel.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown channel %q", ErrMalformedEntry, in.Channel)
	}
	if in.Channel == ChannelBank && in.AccountID == "" {
		return Entry{}, fmt.Errorf("%w: bank entry requires account id", ErrMalformedEntry)
	}
	dateKey := in.DateKey
	if dateKey == "" {
		dateKey = f.Today()
	} else if !ValidDateKey(dateKey) {
		return Entry{}, fmt.Errorf("%w: bad date key %q", ErrMalformedEntry, in.DateKey)
	}
	return Entry{
		ID:          uuid.New().String(),
		Timestamp:   f.now(),
		DateKey:     dateKey,
		Type:        in.Type,
		Amount:      in.Amount,
		Direction:   in.Direction,
		Channel:     in.Channel,
		AccountID:   in.AccountID,
		EntityID:    in.EntityID,
		ReferenceID: in.ReferenceID,
		Description: in.Description,
		PartnerID:   in.PartnerID,
		PartnerName: in.PartnerName,
	}, nil
}

// NewReferenceID mints a grouping key for a balanced pair of entries.
func NewReferenceID() string {
	return uuid.New().String()
}
