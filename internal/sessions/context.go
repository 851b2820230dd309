package sessions

import "context"

type ctxKey string

const recordKey ctxKey = "clinicportal.session_record"

// WithRecord stores the loaded record in context.
func WithRecord(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordKey, rec)
}

// RecordFromContext extracts the loaded record if present.
func RecordFromContext(ctx context.Context) (*Record, bool) {
	rec, ok := ctx.Value(recordKey).(*Record)
	return rec, ok && rec != nil
}
