package store

import (
	"context"

	"github.com/gocql/gocql"

	"greencart_back_end/internal/database"
	"greencart_back_end/internal/models"
)

// ScyllaAddresses implémente AddressStore sur le keyspace users.
type ScyllaAddresses struct{}

func NewScyllaAddresses() *ScyllaAddresses { return &ScyllaAddresses{} }

func (s *ScyllaAddresses) ByID(ctx context.Context, addressID string) (*models.Address, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	addressUUID, err := parseUUID(addressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}

	addr := models.Address{ID: addressID}
	err = session.Query(`SELECT user_id, first_name, last_name, email, street, city, state,
	                      zipcode, country, phone
	                     FROM addresses WHERE address_id = ?`, addressUUID).
		WithContext(ctx).Scan(&addr.UserID, &addr.FirstName, &addr.LastName, &addr.Email,
		&addr.Street, &addr.City, &addr.State, &addr.Zipcode, &addr.Country, &addr.Phone)
	if err == gocql.ErrNotFound {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}

	return &addr, nil
}

// ScyllaUsers implémente UserStore sur le keyspace users.
type ScyllaUsers struct{}

func NewScyllaUsers() *ScyllaUsers { return &ScyllaUsers{} }

func (s *ScyllaUsers) ByID(ctx context.Context, userID string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	userUUID, err := parseUUID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user := models.User{ID: userID}
	err = session.Query(`SELECT name, email FROM users WHERE user_id = ?`, userUUID).
		WithContext(ctx).Scan(&user.Name, &user.Email)
	if err == gocql.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
