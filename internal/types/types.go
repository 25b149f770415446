package types

// Invitation is a single wedding invitation page owned by a user.
type Invitation struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	GroomName       string    `json:"groom_name"`
	BrideName       string    `json:"bride_name"`
	EventDate       string    `json:"event_date"`
	VenueName       string    `json:"venue_name"`
	VenueAddress    string    `json:"venue_address"`
	Theme           string    `json:"theme"`
	BackgroundImage string    `json:"background_image"`
	MoneyGift       MoneyGift `json:"money_gift"`
	Published       bool      `json:"published"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`
}

// MoneyGift holds the bank-transfer details shown to guests, including the
// uploaded QR code image.
type MoneyGift struct {
	Enabled       bool   `json:"enabled"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	QRURL         string `json:"qr_url"`
}

// GalleryImage is one photo attached to an invitation.
type GalleryImage struct {
	ID           string `json:"id"`
	InvitationID string `json:"invitation_id"`
	ImageURL     string `json:"image_url"`
	Caption      string `json:"caption"`
	CreatedAt    string `json:"created_at"`
}

// RSVP is a guest's response to a published invitation.
type RSVP struct {
	ID           string `json:"id"`
	InvitationID string `json:"invitation_id"`
	GuestName    string `json:"guest_name"`
	Attending    bool   `json:"attending"`
	GuestCount   int    `json:"guest_count"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

type InvitationCreateRequest struct {
	Title        string `json:"title" validate:"required"`
	GroomName    string `json:"groom_name" validate:"required"`
	BrideName    string `json:"bride_name" validate:"required"`
	EventDate    string `json:"event_date"`
	VenueName    string `json:"venue_name"`
	VenueAddress string `json:"venue_address"`
	Theme        string `json:"theme"`
}

// InvitationUpdateRequest is a partial update; nil fields are left untouched.
type InvitationUpdateRequest struct {
	Title           *string    `json:"title"`
	GroomName       *string    `json:"groom_name"`
	BrideName       *string    `json:"bride_name"`
	EventDate       *string    `json:"event_date"`
	VenueName       *string    `json:"venue_name"`
	VenueAddress    *string    `json:"venue_address"`
	Theme           *string    `json:"theme"`
	BackgroundImage *string    `json:"background_image"`
	MoneyGift       *MoneyGift `json:"money_gift"`
	Published       *bool      `json:"published"`
}

type RSVPRequest struct {
	GuestName  string `json:"guest_name" validate:"required"`
	Attending  *bool  `json:"attending" validate:"required"`
	GuestCount int    `json:"guest_count" validate:"min=0,max=20"`
	Message    string `json:"message" validate:"max=1000"`
}

type GalleryImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption" validate:"max=255"`
}
