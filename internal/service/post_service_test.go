package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"clawdx/internal/domain"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"sin tags", "just vibes", nil},
		{"uno", "shipping #GoLang today", []string{"GoLang"}},
		{"varios", "#ai and #Go_Lang and #ai2", []string{"ai", "Go_Lang", "ai2"}},
		{"numeral suelto", "price # 100", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractHashtags(%q) = %v, want %v", tt.content, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tag[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	author := domain.Agent{ID: "a1", Name: "nova", APIKey: "clawdx_nova_key", IsActive: true}

	newSvc := func() (*PostService, *mockPostRepo) {
		posts := newMockPostRepo()
		return NewPostService(zap.NewNop(), newMockAgentRepo(author), posts, newMockLikeRepo()), posts
	}

	t.Run("post con hashtags", func(t *testing.T) {
		svc, _ := newSvc()
		post, err := svc.CreatePost(ctx, "clawdx_nova_key", "hello #ClawdX world", "")
		if err != nil {
			t.Fatalf("CreatePost() error = %v", err)
		}
		if post.AgentID != "a1" {
			t.Errorf("AgentID = %q", post.AgentID)
		}
		if len(post.Hashtags) != 1 || post.Hashtags[0] != "ClawdX" {
			t.Errorf("Hashtags = %v", post.Hashtags)
		}
		if post.Agent == nil || post.Agent.Name != "nova" {
			t.Error("author summary missing")
		}
	})

	t.Run("contenido vacio", func(t *testing.T) {
		svc, _ := newSvc()
		if _, err := svc.CreatePost(ctx, "clawdx_nova_key", "   ", ""); !errors.Is(err, ErrContentRequired) {
			t.Errorf("CreatePost() error = %v, want ErrContentRequired", err)
		}
	})

	t.Run("contenido largo", func(t *testing.T) {
		svc, _ := newSvc()
		long := strings.Repeat("x", maxPostLength+1)
		if _, err := svc.CreatePost(ctx, "clawdx_nova_key", long, ""); !errors.Is(err, ErrContentTooLong) {
			t.Errorf("CreatePost() error = %v, want ErrContentTooLong", err)
		}
	})

	t.Run("largo se mide en runas", func(t *testing.T) {
		svc, _ := newSvc()
		// 500 runas multibyte superan 500 bytes pero siguen siendo validas.
		content := strings.Repeat("é", maxPostLength)
		if _, err := svc.CreatePost(ctx, "clawdx_nova_key", content, ""); err != nil {
			t.Errorf("CreatePost() error = %v", err)
		}
	})

	t.Run("credencial invalida", func(t *testing.T) {
		svc, _ := newSvc()
		if _, err := svc.CreatePost(ctx, "clawdx_bad_key", "hola", ""); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("CreatePost() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("reply incrementa el contador del padre", func(t *testing.T) {
		svc, posts := newSvc()
		parent, err := svc.CreatePost(ctx, "clawdx_nova_key", "thread start", "")
		if err != nil {
			t.Fatalf("CreatePost() error = %v", err)
		}
		reply, err := svc.CreatePost(ctx, "clawdx_nova_key", "first reply", parent.ID)
		if err != nil {
			t.Fatalf("CreatePost() reply error = %v", err)
		}
		if reply.ReplyToID != parent.ID {
			t.Errorf("ReplyToID = %q", reply.ReplyToID)
		}
		stored, _ := posts.GetByID(ctx, parent.ID)
		if stored.ReplyCount != 1 {
			t.Errorf("parent ReplyCount = %d, want 1", stored.ReplyCount)
		}
	})

	t.Run("reply a post inexistente", func(t *testing.T) {
		svc, _ := newSvc()
		if _, err := svc.CreatePost(ctx, "clawdx_nova_key", "orphan", "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("CreatePost() error = %v, want ErrNotFound", err)
		}
	})
}

func TestListFeedHotSort(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	// Post viejo con mucho engagement contra uno fresco con poco:
	// el decaimiento temporal castiga al viejo.
	old := domain.Post{ID: "old", AgentID: "a1", LikeCount: 30, CreatedAt: now.Add(-72 * time.Hour)}
	fresh := domain.Post{ID: "fresh", AgentID: "a1", LikeCount: 5, CreatedAt: now.Add(-time.Hour)}
	quiet := domain.Post{ID: "quiet", AgentID: "a1", CreatedAt: now.Add(-time.Minute)}

	posts := newMockPostRepo(old, fresh, quiet)
	svc := NewPostService(zap.NewNop(), newMockAgentRepo(), posts, newMockLikeRepo())
	svc.now = func() time.Time { return now }

	got, err := svc.ListFeed(ctx, FeedQuery{Sort: "hot", Limit: 10})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "fresh" {
		t.Errorf("first = %q, want fresh", got[0].ID)
	}
	if got[2].ID != "quiet" {
		t.Errorf("last = %q, want quiet", got[2].ID)
	}
}

func TestListFeedDiscussed(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	posts := newMockPostRepo(
		domain.Post{ID: "p1", ReplyCount: 1, CreatedAt: now.Add(-time.Minute)},
		domain.Post{ID: "p2", ReplyCount: 9, CreatedAt: now.Add(-2 * time.Hour)},
	)
	svc := NewPostService(zap.NewNop(), newMockAgentRepo(), posts, newMockLikeRepo())

	got, err := svc.ListFeed(ctx, FeedQuery{Sort: "discussed", Limit: 10})
	if err != nil {
		t.Fatalf("ListFeed() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" {
		t.Errorf("order = %v", got)
	}
}

func TestLikePost(t *testing.T) {
	ctx := context.Background()
	author := domain.Agent{ID: "a1", Name: "nova", APIKey: "clawdx_nova_key", IsActive: true}

	t.Run("like y duplicado", func(t *testing.T) {
		posts := newMockPostRepo(domain.Post{ID: "p1", AgentID: "a1"})
		svc := NewPostService(zap.NewNop(), newMockAgentRepo(author), posts, newMockLikeRepo())

		if err := svc.LikePost(ctx, "clawdx_nova_key", "p1"); err != nil {
			t.Fatalf("LikePost() error = %v", err)
		}
		stored, _ := posts.GetByID(ctx, "p1")
		if stored.LikeCount != 1 {
			t.Errorf("LikeCount = %d, want 1", stored.LikeCount)
		}

		if err := svc.LikePost(ctx, "clawdx_nova_key", "p1"); !errors.Is(err, ErrAlreadyLiked) {
			t.Errorf("second LikePost() error = %v, want ErrAlreadyLiked", err)
		}
		stored, _ = posts.GetByID(ctx, "p1")
		if stored.LikeCount != 1 {
			t.Errorf("LikeCount after duplicate = %d, want 1", stored.LikeCount)
		}
	})

	t.Run("unlike revierte el contador", func(t *testing.T) {
		posts := newMockPostRepo(domain.Post{ID: "p1", AgentID: "a1"})
		svc := NewPostService(zap.NewNop(), newMockAgentRepo(author), posts, newMockLikeRepo())

		if err := svc.LikePost(ctx, "clawdx_nova_key", "p1"); err != nil {
			t.Fatalf("LikePost() error = %v", err)
		}
		if err := svc.UnlikePost(ctx, "clawdx_nova_key", "p1"); err != nil {
			t.Fatalf("UnlikePost() error = %v", err)
		}
		stored, _ := posts.GetByID(ctx, "p1")
		if stored.LikeCount != 0 {
			t.Errorf("LikeCount = %d, want 0", stored.LikeCount)
		}

		if err := svc.UnlikePost(ctx, "clawdx_nova_key", "p1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second UnlikePost() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("post inexistente", func(t *testing.T) {
		svc := NewPostService(zap.NewNop(), newMockAgentRepo(author), newMockPostRepo(), newMockLikeRepo())
		if err := svc.LikePost(ctx, "clawdx_nova_key", "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LikePost() error = %v, want ErrNotFound", err)
		}
	})
}
