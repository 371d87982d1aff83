package bearer

import (
	"context"
	"errors"
	"testing"
	"time"

	"storyhub/internal/auth"
	"storyhub/internal/auth/credential"
	"storyhub/internal/models"
	"storyhub/internal/observability/logging"
	"storyhub/internal/observability/metrics"
	"storyhub/internal/store"
	"storyhub/internal/store/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	store    *memory.Store
	issuer   *credential.SecretIssuer
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	issuer, err := credential.NewSecretIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	return &fixture{
		store:    s,
		issuer:   issuer,
		resolver: New(credential.NewSecretVerifier(testSecret), s, logging.Nop(), nil),
	}
}

func (f *fixture) user(t *testing.T, role auth.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: "u", Email: primitive.NewObjectID().Hex() + "@example.com", Password: "hash", Role: role}
	require.NoError(t, f.store.Save(context.Background(), store.Users, u))
	token, _, err := f.issuer.Issue(u.ID.Hex())
	require.NoError(t, err)
	return u, token
}

func TestResolveNoToken(t *testing.T) {
	f := newFixture(t)
	counter := metrics.AuthenticationTotal.WithLabelValues(OutcomeNoToken)
	before := testutil.ToFloat64(counter)

	for _, header := range []string{"", "Bearer "} {
		_, err := f.resolver.Resolve(context.Background(), header)
		assert.ErrorIs(t, err, auth.ErrNoToken)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestResolveInvalidToken(t *testing.T) {
	f := newFixture(t)

	other, err := credential.NewSecretIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
	require.NoError(t, err)
	u, _ := f.user(t, auth.RoleReader)
	forged, _, err := other.Issue(u.ID.Hex())
	require.NoError(t, err)

	for _, header := range []string{"Bearer garbage", "Bearer " + forged} {
		_, err := f.resolver.Resolve(context.Background(), header)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Equal(t, "Invalid token", auth.Message(err))
	}
}

func TestResolvePrincipal(t *testing.T) {
	f := newFixture(t)
	u, token := f.user(t, auth.RoleAdmin)

	p, err := f.resolver.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, &auth.Principal{ID: u.ID.Hex(), Role: auth.RoleAdmin}, p)

	// the prefix is optional
	p, err = f.resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), p.ID)
}

func TestResolveDeletedUser(t *testing.T) {
	f := newFixture(t)
	u, token := f.user(t, auth.RoleReader)
	require.NoError(t, f.store.DeleteOne(context.Background(), store.Users, u.ID.Hex()))

	_, err := f.resolver.Resolve(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.Equal(t, "User not found", auth.Message(err))
}

func TestResolveIsIdempotentAndReadsLiveRole(t *testing.T) {
	f := newFixture(t)
	u, token := f.user(t, auth.RoleReader)
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	u.Role = auth.RoleAdmin
	require.NoError(t, f.store.Save(ctx, store.Users, u))

	promoted, err := f.resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, promoted.Role)
}

type failingStore struct {
	store.Store
}

func (failingStore) FindByID(context.Context, string, string, any, ...store.FindOption) error {
	return errors.New("server selection timeout")
}

func TestResolveStoreFailure(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, auth.RoleReader)
	r := New(credential.NewSecretVerifier(testSecret), failingStore{}, logging.Nop(), nil)

	_, err := r.Resolve(context.Background(), "Bearer "+token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrNoToken)
	assert.NotErrorIs(t, err, auth.ErrInvalidToken)
	assert.NotErrorIs(t, err, auth.ErrUserNotFound)
}
