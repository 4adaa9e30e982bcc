package repo

import (
	"errors"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

type UserRepository interface {
	CreateUser(u models.User) (models.User, error)
	GetByUsername(username string) (models.User, error)
	GetByID(id int) (models.User, error)
}

var ErrUserNotFound = errors.New("user not found")

// ErrDuplicatedValueUnique is returned when an insert violates a
// uniqueness constraint.
var ErrDuplicatedValueUnique = errors.New("duplicated value in unique column")
