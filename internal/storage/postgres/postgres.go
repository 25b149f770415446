package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS invitations (
			id SERIAL PRIMARY KEY,
			owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			slug VARCHAR(64) UNIQUE NOT NULL,
			title VARCHAR(255) NOT NULL,
			groom_name VARCHAR(255) NOT NULL,
			bride_name VARCHAR(255) NOT NULL,
			event_date VARCHAR(255) DEFAULT '',
			venue_name VARCHAR(255) DEFAULT '',
			venue_address TEXT DEFAULT '',
			theme VARCHAR(100) DEFAULT '',
			background_image TEXT DEFAULT '',
			money_gift_enabled BOOLEAN DEFAULT FALSE,
			bank_name VARCHAR(255) DEFAULT '',
			account_name VARCHAR(255) DEFAULT '',
			account_number VARCHAR(64) DEFAULT '',
			qr_url TEXT DEFAULT '',
			published BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS gallery_images (
			id SERIAL PRIMARY KEY,
			invitation_id INTEGER NOT NULL REFERENCES invitations(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL,
			caption VARCHAR(255) DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`CREATE TABLE IF NOT EXISTS rsvps (
			id SERIAL PRIMARY KEY,
			invitation_id INTEGER NOT NULL REFERENCES invitations(id) ON DELETE CASCADE,
			guest_name VARCHAR(255) NOT NULL,
			attending BOOLEAN NOT NULL,
			guest_count INTEGER DEFAULT 1,
			message TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateUser(email, password string) (string, error) {
	var userID int
	query := `
	INSERT INTO users (email, password)
	VALUES ($1, $2)
	RETURNING id
	`

	err := p.Db.QueryRow(query, email, password).Scan(&userID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", userID), nil
}

func (p *Postgres) GetUserByEmail(email string) (string, string, error) {
	var userID int
	var hashedPassword string
	query := `
	SELECT id, password FROM users WHERE email = $1
	`

	err := p.Db.QueryRow(query, email).Scan(&userID, &hashedPassword)
	if err != nil {
		return "", "", err
	}

	return fmt.Sprintf("%d", userID), hashedPassword, nil
}

func (p *Postgres) CreateInvitation(ownerID, slug string, req *types.InvitationCreateRequest) (string, error) {
	var invitationID int
	query := `
	INSERT INTO invitations (owner_id, slug, title, groom_name, bride_name, event_date, venue_name, venue_address, theme)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
	`

	err := p.Db.QueryRow(query, ownerID, slug, req.Title, req.GroomName, req.BrideName,
		req.EventDate, req.VenueName, req.VenueAddress, req.Theme).Scan(&invitationID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", invitationID), nil
}

const invitationColumns = `id, owner_id, slug, title, groom_name, bride_name, event_date, venue_name, venue_address,
	theme, background_image, money_gift_enabled, bank_name, account_name, account_number, qr_url,
	published, created_at, updated_at`

func (p *Postgres) scanInvitation(row *sql.Row) (*types.Invitation, error) {
	var inv types.Invitation
	var id, ownerID int
	var createdAt, updatedAt time.Time

	err := row.Scan(&id, &ownerID, &inv.Slug, &inv.Title, &inv.GroomName, &inv.BrideName,
		&inv.EventDate, &inv.VenueName, &inv.VenueAddress, &inv.Theme, &inv.BackgroundImage,
		&inv.MoneyGift.Enabled, &inv.MoneyGift.BankName, &inv.MoneyGift.AccountName,
		&inv.MoneyGift.AccountNumber, &inv.MoneyGift.QRURL, &inv.Published, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	inv.ID = fmt.Sprintf("%d", id)
	inv.OwnerID = fmt.Sprintf("%d", ownerID)
	inv.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	inv.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &inv, nil
}

func (p *Postgres) GetInvitationByID(id string) (*types.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return p.scanInvitation(p.Db.QueryRow(query, id))
}

func (p *Postgres) GetInvitationBySlug(slug string) (*types.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE slug = $1`
	return p.scanInvitation(p.Db.QueryRow(query, slug))
}

func (p *Postgres) ListInvitationsByOwner(ownerID string) ([]types.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := p.Db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []types.Invitation
	for rows.Next() {
		var inv types.Invitation
		var id, owner int
		var createdAt, updatedAt time.Time

		err := rows.Scan(&id, &owner, &inv.Slug, &inv.Title, &inv.GroomName, &inv.BrideName,
			&inv.EventDate, &inv.VenueName, &inv.VenueAddress, &inv.Theme, &inv.BackgroundImage,
			&inv.MoneyGift.Enabled, &inv.MoneyGift.BankName, &inv.MoneyGift.AccountName,
			&inv.MoneyGift.AccountNumber, &inv.MoneyGift.QRURL, &inv.Published, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		inv.ID = fmt.Sprintf("%d", id)
		inv.OwnerID = fmt.Sprintf("%d", owner)
		inv.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		inv.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}

// UpdateInvitation applies a partial update; only non-nil request fields are
// written.
func (p *Postgres) UpdateInvitation(id string, req *types.InvitationUpdateRequest) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.GroomName != nil {
		add("groom_name", *req.GroomName)
	}
	if req.BrideName != nil {
		add("bride_name", *req.BrideName)
	}
	if req.EventDate != nil {
		add("event_date", *req.EventDate)
	}
	if req.VenueName != nil {
		add("venue_name", *req.VenueName)
	}
	if req.VenueAddress != nil {
		add("venue_address", *req.VenueAddress)
	}
	if req.Theme != nil {
		add("theme", *req.Theme)
	}
	if req.BackgroundImage != nil {
		add("background_image", *req.BackgroundImage)
	}
	if req.MoneyGift != nil {
		add("money_gift_enabled", req.MoneyGift.Enabled)
		add("bank_name", req.MoneyGift.BankName)
		add("account_name", req.MoneyGift.AccountName)
		add("account_number", req.MoneyGift.AccountNumber)
		add("qr_url", req.MoneyGift.QRURL)
	}
	if req.Published != nil {
		add("published", *req.Published)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE invitations SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	result, err := p.Db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (p *Postgres) DeleteInvitation(id string) error {
	result, err := p.Db.Exec(`DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (p *Postgres) AddGalleryImage(invitationID, imageURL, caption string) (string, error) {
	var imageID int
	query := `
	INSERT INTO gallery_images (invitation_id, image_url, caption)
	VALUES ($1, $2, $3)
	RETURNING id
	`

	err := p.Db.QueryRow(query, invitationID, imageURL, caption).Scan(&imageID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", imageID), nil
}

func (p *Postgres) GetGalleryImage(id string) (*types.GalleryImage, error) {
	var img types.GalleryImage
	var imgID, invitationID int
	var createdAt time.Time

	query := `SELECT id, invitation_id, image_url, caption, created_at FROM gallery_images WHERE id = $1`
	err := p.Db.QueryRow(query, id).Scan(&imgID, &invitationID, &img.ImageURL, &img.Caption, &createdAt)
	if err != nil {
		return nil, err
	}

	img.ID = fmt.Sprintf("%d", imgID)
	img.InvitationID = fmt.Sprintf("%d", invitationID)
	img.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &img, nil
}

func (p *Postgres) ListGalleryImages(invitationID string) ([]types.GalleryImage, error) {
	query := `SELECT id, invitation_id, image_url, caption, created_at FROM gallery_images WHERE invitation_id = $1 ORDER BY created_at`

	rows, err := p.Db.Query(query, invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []types.GalleryImage
	for rows.Next() {
		var img types.GalleryImage
		var imgID, invID int
		var createdAt time.Time

		if err := rows.Scan(&imgID, &invID, &img.ImageURL, &img.Caption, &createdAt); err != nil {
			return nil, err
		}

		img.ID = fmt.Sprintf("%d", imgID)
		img.InvitationID = fmt.Sprintf("%d", invID)
		img.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		images = append(images, img)
	}

	return images, rows.Err()
}

func (p *Postgres) DeleteGalleryImage(id string) error {
	result, err := p.Db.Exec(`DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (p *Postgres) CreateRSVP(invitationID string, req *types.RSVPRequest) (*types.RSVP, error) {
	var rsvpID int
	var createdAt time.Time
	query := `
	INSERT INTO rsvps (invitation_id, guest_name, attending, guest_count, message)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`

	err := p.Db.QueryRow(query, invitationID, req.GuestName, *req.Attending, req.GuestCount, req.Message).
		Scan(&rsvpID, &createdAt)
	if err != nil {
		return nil, err
	}

	return &types.RSVP{
		ID:           fmt.Sprintf("%d", rsvpID),
		InvitationID: invitationID,
		GuestName:    req.GuestName,
		Attending:    *req.Attending,
		GuestCount:   req.GuestCount,
		Message:      req.Message,
		CreatedAt:    createdAt.UTC().Format(time.RFC3339),
	}, nil
}

func (p *Postgres) ListRSVPs(invitationID string) ([]types.RSVP, error) {
	query := `SELECT id, invitation_id, guest_name, attending, guest_count, message, created_at
	FROM rsvps WHERE invitation_id = $1 ORDER BY created_at DESC`

	rows, err := p.Db.Query(query, invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []types.RSVP
	for rows.Next() {
		var r types.RSVP
		var rsvpID, invID int
		var createdAt time.Time

		if err := rows.Scan(&rsvpID, &invID, &r.GuestName, &r.Attending, &r.GuestCount, &r.Message, &createdAt); err != nil {
			return nil, err
		}

		r.ID = fmt.Sprintf("%d", rsvpID)
		r.InvitationID = fmt.Sprintf("%d", invID)
		r.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		rsvps = append(rsvps, r)
	}

	return rsvps, rows.Err()
}

func (p *Postgres) GetReferencedMediaURLs() ([]string, error) {
	query := `
	SELECT background_image FROM invitations WHERE background_image <> ''
	UNION
	SELECT qr_url FROM invitations WHERE qr_url <> ''
	UNION
	SELECT image_url FROM gallery_images WHERE image_url <> ''
	`

	rows, err := p.Db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

func (p *Postgres) GetInvitationMediaURLs(invitationID string) ([]string, error) {
	var background, qrURL string
	err := p.Db.QueryRow(`SELECT background_image, qr_url FROM invitations WHERE id = $1`, invitationID).
		Scan(&background, &qrURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	if background != "" {
		urls = append(urls, background)
	}
	if qrURL != "" {
		urls = append(urls, qrURL)
	}

	rows, err := p.Db.Query(`SELECT image_url FROM gallery_images WHERE invitation_id = $1`, invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		if u != "" {
			urls = append(urls, u)
		}
	}

	return urls, rows.Err()
}
