package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fihircio/raikan-service/internal/storage"
	"github.com/fihircio/raikan-service/internal/types"
)

// CacheService fronts the published-invitation viewer with redis. Guest
// traffic on a published page dwarfs owner edits, so reads are served from
// cache and every mutation invalidates by slug.
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
	ttl     time.Duration
}

func NewCacheService(storage storage.Storage, redisClient *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
		ttl:     ttl,
	}
}

// Cache key patterns
const (
	publishedPageKey = "invitation:published:%s" // invitation:published:slug
	galleryKey       = "invitation:gallery:%s"   // invitation:gallery:invitationID
)

// GetPublishedInvitation returns the cached page or fetches it from the
// database. Unpublished invitations are never cached.
func (c *CacheService) GetPublishedInvitation(ctx context.Context, slug string) (*types.Invitation, error) {
	key := fmt.Sprintf(publishedPageKey, slug)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var inv types.Invitation
		if err := json.Unmarshal([]byte(cached), &inv); err == nil {
			return &inv, nil
		}
	}

	inv, err := c.storage.GetInvitationBySlug(slug)
	if err != nil {
		return nil, err
	}

	if inv.Published {
		data, _ := json.Marshal(inv)
		c.redis.Set(ctx, key, data, c.ttl)
	}

	return inv, nil
}

// GetGallery returns the cached gallery for an invitation or fetches it.
func (c *CacheService) GetGallery(ctx context.Context, invitationID string) ([]types.GalleryImage, error) {
	key := fmt.Sprintf(galleryKey, invitationID)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var images []types.GalleryImage
		if err := json.Unmarshal([]byte(cached), &images); err == nil {
			return images, nil
		}
	}

	images, err := c.storage.ListGalleryImages(invitationID)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(images)
	c.redis.Set(ctx, key, data, c.ttl)

	return images, nil
}

// InvalidateInvitation drops the cached page and gallery after a mutation.
func (c *CacheService) InvalidateInvitation(ctx context.Context, slug, invitationID string) {
	c.redis.Del(ctx, fmt.Sprintf(publishedPageKey, slug))
	c.redis.Del(ctx, fmt.Sprintf(galleryKey, invitationID))
}
