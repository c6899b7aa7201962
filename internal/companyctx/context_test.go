package companyctx

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestCompanyIDRoundTrip(t *testing.T) {
	ctx := WithCompanyID(context.Background(), snowflake.ID(42))
	id, ok := CompanyIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, snowflake.ID(42), id)
}

func TestCompanyIDMissing(t *testing.T) {
	_, ok := CompanyIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = CompanyIDFromContext(WithCompanyID(context.Background(), 0))
	assert.False(t, ok)
}

func TestActorDefaultsToSystem(t *testing.T) {
	assert.Equal(t, ActorTypeSystem, ActorFromContext(context.Background()).Type)

	ctx := WithActor(context.Background(), Actor{Type: ActorTypeUser, ID: "7", Role: "owner"})
	actor := ActorFromContext(ctx)
	assert.Equal(t, "7", actor.ID)
	assert.Equal(t, "owner", actor.Role)
}
