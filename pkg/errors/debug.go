package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v84"
)

// maxChain bounds error_chain; deeper wraps are elided.
const maxChain = 8

// LogFields flattens err into structured log fields: the typed code, the
// unwrap chain, and driver or gateway specifics when a Postgres or Stripe
// error sits anywhere in the chain.
func LogFields(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	fields := map[string]any{"error": err.Error()}
	if typed := As(err); typed != nil {
		fields["error_code"] = string(typed.Code())
	}

	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		if len(chain) == maxChain {
			chain = append(chain, "...")
			break
		}
		chain = append(chain, fmt.Sprintf("%T: %v", e, e))
	}
	fields["error_chain"] = chain

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var stripeErr *stripe.Error
	switch {
	case errors.As(err, &pgxErr):
		putNonEmpty(fields, map[string]string{
			"pg_code":       pgxErr.Code,
			"pg_constraint": pgxErr.ConstraintName,
			"pg_table":      pgxErr.TableName,
			"pg_column":     pgxErr.ColumnName,
			"pg_detail":     pgxErr.Detail,
			"pg_message":    pgxErr.Message,
		})
	case errors.As(err, &pqErr):
		putNonEmpty(fields, map[string]string{
			"pg_code":       string(pqErr.Code),
			"pg_constraint": pqErr.Constraint,
			"pg_table":      pqErr.Table,
			"pg_column":     pqErr.Column,
			"pg_detail":     pqErr.Detail,
			"pg_message":    pqErr.Message,
		})
	case errors.As(err, &stripeErr):
		putNonEmpty(fields, map[string]string{
			"stripe_code":         string(stripeErr.Code),
			"stripe_type":         string(stripeErr.Type),
			"stripe_decline_code": string(stripeErr.DeclineCode),
			"stripe_message":      stripeErr.Msg,
			"stripe_request_id":   stripeErr.RequestID,
		})
		if stripeErr.HTTPStatusCode != 0 {
			fields["stripe_status"] = stripeErr.HTTPStatusCode
		}
	}
	return fields
}

func putNonEmpty(dst map[string]any, src map[string]string) {
	for k, v := range src {
		if v != "" {
			dst[k] = v
		}
	}
}
