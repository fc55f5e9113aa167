package student

import (
	"time"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:student_form,alias:sf"`

	ID          int64     `bun:"id,pk,autoincrement"`
	FirstName   string    `bun:"first_name,type:varchar(50),notnull"`
	LastName    string    `bun:"last_name,type:varchar(50),notnull"`
	Email       string    `bun:"email,type:varchar(255),unique,notnull"`
	CNIC        string    `bun:"cnic,type:varchar(15),unique,notnull"`
	DateOfBirth time.Time `bun:"date_of_birth,type:date,notnull"`
	PhoneNumber *string   `bun:"phone_number,type:varchar(11)"`
	Address     *string   `bun:"address,type:varchar(200)"`
	Degree      string    `bun:"degree,type:varchar(100),notnull"`
}

// RegistrationForm is the request body of POST /students/.
type RegistrationForm struct {
	FirstName   string  `json:"first_name" validate:"required,max=50"`
	LastName    string  `json:"last_name" validate:"required,max=50"`
	Email       string  `json:"email" validate:"required,max=255,email"`
	CNIC        string  `json:"cnic" validate:"required,cnic"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02,student_age"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,pk_phone"`
	Address     *string `json:"address" validate:"omitnil,max=200"`
	Degree      string  `json:"degree" validate:"required,max=100"`
}

// Response is the public representation of a stored registration.
type Response struct {
	ID          int64   `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	CNIC        string  `json:"cnic"`
	DateOfBirth string  `json:"date_of_birth"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	Degree      string  `json:"degree"`
}

func (s *Student) ToResponse() Response {
	return Response{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		CNIC:        s.CNIC,
		DateOfBirth: s.DateOfBirth.Format(time.DateOnly),
		PhoneNumber: s.PhoneNumber,
		Address:     s.Address,
		Degree:      s.Degree,
	}
}

// Models lists the tables owned by this package.
func Models() []interface{} {
	return []interface{}{(*Student)(nil)}
}
