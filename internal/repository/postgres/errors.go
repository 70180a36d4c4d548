package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zizouhuweidi/trivia/internal/domain"
)

// classify maps a pgx failure onto a domain cause
func classify(err error) domain.Cause {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return domain.CauseUnknown
		}
		// SQLSTATE classes: 22 data exception, 23 integrity constraint,
		// 08 connection exception, 57 operator intervention.
		switch pgErr.Code[:2] {
		case "22":
			return domain.CauseValidation
		case "23":
			return domain.CauseConstraint
		case "08", "57":
			return domain.CauseConnectivity
		}
		return domain.CauseUnknown
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.CauseConnectivity
	}
	return domain.CauseUnknown
}

// storeError wraps err with msg and tags it with its cause
func storeError(msg string, err error) error {
	return domain.NewStoreError(classify(err), fmt.Errorf("%s: %w", msg, err))
}
