package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKeyType struct{}

var requestDataKey = requestDataKeyType{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the authenticated identity for the current request.
// ProfileID is uuid.Nil until the caller has selected a profile.
type RequestData struct {
	TokenString string
	AccountID   uuid.UUID
	ProfileID   uuid.UUID
	Role        string
}

func (rd *RequestData) HasProfile() bool {
	return rd != nil && rd.ProfileID != uuid.Nil
}
