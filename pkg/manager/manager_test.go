package manager

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/require"

	"github.com/kiyora/animehub/pkg/manager/mocks"
	"github.com/kiyora/animehub/pkg/payments"
	"github.com/kiyora/animehub/pkg/storage"
	"github.com/kiyora/animehub/pkg/storage/memory"
)

type clientMocks struct {
	mal   *mocks.MockMALClientInterface
	jikan *mocks.MockJikanClientInterface
	kitsu *mocks.MockKitsuClientInterface
}

func newTestManager(t *testing.T, store storage.Storage) (Manager, clientMocks, *payments.FakeProvider) {
	t.Helper()
	return newTestManagerWithConfig(t, store, Config{})
}

func newTestManagerWithConfig(t *testing.T, store storage.Storage, config Config) (Manager, clientMocks, *payments.FakeProvider) {
	t.Helper()

	ctrl := gomock.NewController(t)
	c := clientMocks{
		mal:   mocks.NewMockMALClientInterface(ctrl),
		jikan: mocks.NewMockJikanClientInterface(ctrl),
		kitsu: mocks.NewMockKitsuClientInterface(ctrl),
	}

	provider := payments.NewFakeProvider()
	m := New(c.mal, c.jikan, c.kitsu, store, provider, config)

	return m, c, provider
}

func seedAnime(t *testing.T, store storage.Storage, title string, malID int) *storage.Anime {
	t.Helper()

	anime := storage.Anime{
		Title:       title,
		EpisodeIDs:  []primitive.ObjectID{},
		UserRatings: []storage.UserRating{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if malID > 0 {
		anime.MALID = &malID
	}

	id, err := store.CreateAnime(context.Background(), anime)
	require.NoError(t, err)

	created, err := store.GetAnime(context.Background(), id)
	require.NoError(t, err)

	return created
}

func seedEpisode(t *testing.T, store storage.Storage, animeID primitive.ObjectID, number int) *storage.Episode {
	t.Helper()

	id, err := store.CreateEpisode(context.Background(), storage.Episode{
		AnimeID:     animeID,
		Number:      number,
		Title:       "Episode " + primitive.NewObjectID().Hex()[:4],
		UserRatings: []storage.UserRating{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, store.AddEpisodesToAnime(context.Background(), animeID, []primitive.ObjectID{id}))

	episode, err := store.GetEpisode(context.Background(), id)
	require.NoError(t, err)

	return episode
}

func seedUser(t *testing.T, store storage.Storage, email string) *storage.User {
	t.Helper()

	id, err := store.CreateUser(context.Background(), storage.User{
		Name:      "test user",
		Email:     email,
		Password:  "x",
		Watchlist: []primitive.ObjectID{},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	user, err := store.GetUser(context.Background(), id)
	require.NoError(t, err)

	return user
}

func newMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New()
}
