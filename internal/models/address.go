package models

type Address struct {
	ID        string `json:"id" db:"address_id"`
	UserID    string `json:"user_id" db:"user_id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Street    string `json:"street" db:"street"`
	City      string `json:"city" db:"city"`
	State     string `json:"state" db:"state"`
	Zipcode   string `json:"zipcode" db:"zipcode"`
	Country   string `json:"country" db:"country"`
	Phone     string `json:"phone" db:"phone"`
}
