// internal/recommendation/errors.go
package recommendation

import (
	"context"
	"database/sql"
	"database/sql/driver"
	goerrors "errors"
	"net"

	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/engine"
)

// ToStandardError maps service and engine errors onto job error codes.
func ToStandardError(err error, userID string) *errors.StandardError {
	var notFound *NotFoundError

	switch {
	case goerrors.Is(err, engine.ErrProfileIncomplete):
		return errors.NewProfileIncompleteError(userID)
	case goerrors.Is(err, engine.ErrEmptyCatalog):
		return errors.NewEmptyCatalogError()
	case goerrors.Is(err, engine.ErrInvalidScore):
		return errors.NewInvalidScoreError(err)
	case goerrors.As(err, &notFound):
		return errors.NewRecommendationNotFoundError(notFound.UserID, notFound.CollegeID)
	case goerrors.Is(err, context.DeadlineExceeded):
		return errors.NewQueryTimeoutError("recommendation")
	case (goerrors.Is(err, ErrProfileLookup) || goerrors.Is(err, ErrCatalogLookup)) && isConnectionError(err):
		return errors.NewDatabaseConnectionFailedError(err)
	case goerrors.Is(err, ErrProfileLookup):
		return errors.NewProfileLookupFailedError(err)
	case goerrors.Is(err, ErrCatalogLookup):
		return errors.NewCatalogLookupFailedError(err)
	case goerrors.Is(err, ErrCacheWrite):
		return errors.NewCacheWriteFailedError(err)
	case goerrors.Is(err, ErrCacheRead):
		return errors.NewCacheReadFailedError(err)
	}
	return errors.AsStandardError(err)
}

// isConnectionError reports whether a store error came from the connection
// rather than the query.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	return goerrors.Is(err, driver.ErrBadConn) ||
		goerrors.Is(err, sql.ErrConnDone) ||
		goerrors.As(err, &opErr)
}
