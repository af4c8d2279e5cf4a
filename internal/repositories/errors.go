package repositories

import (
	"errors"
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err comes from a unique index
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND AppError
func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally, for use with ESCAPE '\'
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// paginate applies a normalized page request to a query
func paginate(db *gorm.DB, page models.PageRequest) *gorm.DB {
	return db.Offset(page.Offset()).Limit(page.PerPage)
}

// loadAuthors fetches compact profiles for the given user ids
func loadAuthors(db *gorm.DB, ids []uint) (map[uint]models.UserCompact, error) {
	out := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", uniqueIDs(ids)).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].ToCompact()
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
