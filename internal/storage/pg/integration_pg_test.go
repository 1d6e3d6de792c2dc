//go:build integration

package pg

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/atlas-forum/atlas/internal/config"
	"github.com/atlas-forum/atlas/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, storage, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "atlas"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// postgres restarts itself once after the first startup
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	cfg := &config.Config{Private: config.Private{Pg: config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}}}
	s, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return s, container
}

func teardown(ctx context.Context, s *Storage, container *postgres.PostgresContainer) {
	if err := s.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// ==================
// Fixtures
// ==================

type fixture struct {
	site   domain.Site
	forum  domain.Forum
	author domain.Member
	other  domain.Member
}

// setupForum creates a fresh site with one category and one forum and two members.
func setupForum(t *testing.T, forumSlug string) fixture {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	site := domain.Site{Id: uuid.New(), Name: "site-" + suffix, Title: "Site " + suffix}
	_, err := storage.db.ExecContext(ctx, "INSERT INTO sites (id, name, title) VALUES ($1, $2, $3)", site.Id, site.Name, site.Title)
	require.NoError(t, err)

	categoryId := uuid.New()
	_, err = storage.db.ExecContext(ctx, "INSERT INTO categories (id, site_id, name) VALUES ($1, $2, $3)", categoryId, site.Id, "General")
	require.NoError(t, err)

	forum := domain.Forum{Id: uuid.New(), CategoryId: categoryId, SiteId: site.Id, Name: "Forum " + forumSlug, Slug: forumSlug}
	require.NoError(t, insertForum(ctx, forum))

	return fixture{
		site:   site,
		forum:  forum,
		author: createMember(t, "author-"+suffix),
		other:  createMember(t, "other-"+suffix),
	}
}

func insertForum(ctx context.Context, f domain.Forum) error {
	_, err := storage.db.ExecContext(ctx,
		"INSERT INTO forums (id, category_id, site_id, name, slug) VALUES ($1, $2, $3, $4, $5)",
		f.Id, f.CategoryId, f.SiteId, f.Name, f.Slug)
	return err
}

func createCategory(t *testing.T, siteId domain.SiteId, name string) domain.CategoryId {
	t.Helper()
	id := uuid.New()
	_, err := storage.db.ExecContext(context.Background(), "INSERT INTO categories (id, site_id, name) VALUES ($1, $2, $3)", id, siteId, name)
	require.NoError(t, err)
	return id
}

func createMember(t *testing.T, name string) domain.Member {
	t.Helper()
	m := domain.Member{
		Id:             uuid.New(),
		IdentityUserId: uuid.NewString(),
		Email:          name + "@example.com",
		DisplayName:    name,
	}
	_, err := storage.db.ExecContext(context.Background(),
		"INSERT INTO members (id, identity_user_id, email, display_name) VALUES ($1, $2, $3, $4)",
		m.Id, m.IdentityUserId, m.Email, m.DisplayName)
	require.NoError(t, err)
	return m
}

func grant(t *testing.T, forumId domain.ForumId, role *domain.RoleName, memberId *domain.MemberId, types ...domain.PermissionType) {
	t.Helper()
	for _, pt := range types {
		_, err := storage.db.ExecContext(context.Background(),
			"INSERT INTO permissions (id, forum_id, role, member_id, type) VALUES ($1, $2, $3, $4, $5)",
			uuid.New(), forumId, role, nullMember(memberId), pt)
		require.NoError(t, err)
	}
}

func createTopic(t *testing.T, f fixture, title string, createdOn time.Time) domain.Post {
	t.Helper()
	topic := domain.Post{
		Id:        uuid.New(),
		ForumId:   f.forum.Id,
		Title:     title,
		Slug:      fmt.Sprintf("topic-%s", uuid.NewString()[:8]),
		Content:   "content of " + title,
		Status:    domain.StatusPublished,
		CreatedBy: f.author.Id,
		CreatedOn: createdOn,
	}
	require.NoError(t, storage.CreateTopic(context.Background(), f.site.Id, topic))
	return topic
}

func createReply(t *testing.T, f fixture, topic domain.Post, content string, createdOn time.Time) domain.Post {
	t.Helper()
	topicId := topic.Id
	reply := domain.Post{
		Id:        uuid.New(),
		ForumId:   topic.ForumId,
		TopicId:   &topicId,
		Content:   content,
		Status:    domain.StatusPublished,
		CreatedBy: f.other.Id,
		CreatedOn: createdOn,
	}
	require.NoError(t, storage.CreateReply(context.Background(), f.site.Id, reply))
	return reply
}
