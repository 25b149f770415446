package storage

import "github.com/fihircio/raikan-service/internal/types"

type Storage interface {
	CreateUser(email, password string) (string, error)
	GetUserByEmail(email string) (string, string, error)

	CreateInvitation(ownerID, slug string, req *types.InvitationCreateRequest) (string, error)
	GetInvitationByID(id string) (*types.Invitation, error)
	GetInvitationBySlug(slug string) (*types.Invitation, error)
	ListInvitationsByOwner(ownerID string) ([]types.Invitation, error)
	UpdateInvitation(id string, req *types.InvitationUpdateRequest) error
	DeleteInvitation(id string) error

	AddGalleryImage(invitationID, imageURL, caption string) (string, error)
	GetGalleryImage(id string) (*types.GalleryImage, error)
	ListGalleryImages(invitationID string) ([]types.GalleryImage, error)
	DeleteGalleryImage(id string) error

	CreateRSVP(invitationID string, req *types.RSVPRequest) (*types.RSVP, error)
	ListRSVPs(invitationID string) ([]types.RSVP, error)

	// GetReferencedMediaURLs returns every media URL held by a live record:
	// invitation backgrounds, money-gift QR codes and gallery images. These
	// are the sole source of truth for which stored objects are still needed.
	GetReferencedMediaURLs() ([]string, error)
	// GetInvitationMediaURLs returns the media URLs owned by one invitation.
	GetInvitationMediaURLs(invitationID string) ([]string, error)
}
