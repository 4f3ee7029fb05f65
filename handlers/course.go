package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/utils"
)

// GET /api/courses
func (db *DBHandler) GetCoursesForUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	memberships := []models.Membership{}
	err := db.WithContext(r.Context()).Preload("Course").
		Where("user_id = ?", user.ID).Order("joined_at asc").
		Find(&memberships).Error
	if err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "list memberships"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, memberships)
}

// POST /api/courses
// The creator becomes the course's first admin.
func (db *DBHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > 100 {
		utils.WriteError(w, r, errs.Validation("invalid course", map[string]string{
			"title": "Title is required and must be at most 100 characters",
		}))
		return
	}

	membership := models.Membership{UserID: user.ID, Role: models.RoleAdmin}
	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		course := models.Course{Title: title, Description: strings.TrimSpace(req.Description), OwnerID: user.ID}
		if err := tx.Create(&course).Error; err != nil {
			return errors.Wrap(err, "create course")
		}
		membership.CourseID = course.ID
		if err := tx.Omit("Course").Create(&membership).Error; err != nil {
			return errors.Wrap(err, "create membership")
		}
		membership.Course = course
		return nil
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, membership)
}

// POST /api/courses/{courseID}/join
// Joining twice returns the existing membership.
func (db *DBHandler) JoinCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var membership models.Membership
	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Where("id = ?", r.PathValue("courseID")).First(&course).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("course not found")
			}
			return errors.Wrap(err, "load course")
		}

		row := models.Membership{UserID: user.ID, CourseID: course.ID, Role: models.RoleMember}
		if err := tx.Omit("Course").Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errors.Wrap(err, "create membership")
		}
		return tx.Preload("Course").Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&membership).Error
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, membership)
}
