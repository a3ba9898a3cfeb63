package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

const (
	maxNotesListed      = 1000
	defaultNoteCategory = "general"
)

// NoteController serves note CRUD.
type NoteController struct {
	db   *gorm.DB
	game *gamification.Service
}

// NewNoteController creates a NoteController.
func NewNoteController(db *gorm.DB, game *gamification.Service) *NoteController {
	return &NoteController{db: db, game: game}
}

// ListNotes returns the user's notes, most recently edited first. The
// category filter matches any of a note's categories.
func (n *NoteController) ListNotes(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	notes := make([]models.Note, 0)
	if err := n.db.Where("user_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Limit(maxNotesListed).
		Find(&notes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list notes")
		return
	}

	if category := ctx.Query("category"); category != "" {
		filtered := notes[:0]
		for i := range notes {
			if notes[i].HasCategory(category) {
				filtered = append(filtered, notes[i])
			}
		}
		notes = filtered
	}
	utils.Success(ctx, notes)
}

// CreateNote stores a note and rewards it.
func (n *NoteController) CreateNote(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Title      string   `json:"title" binding:"required,max=255"`
		Content    string   `json:"content"`
		Categories []string `json:"categories"`
		IsFavorite bool     `json:"is_favorite"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	note := models.Note{
		UserID:     userID,
		Title:      utils.SanitizeText(req.Title),
		Content:    utils.SanitizeRich(req.Content),
		Categories: datatypes.JSONSlice[string](noteCategories(req.Categories)),
		IsFavorite: req.IsFavorite,
	}
	if note.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}

	if err := n.db.Create(&note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create note")
		return
	}

	n.game.OnNoteCreated(ctx.Request.Context(), userID)
	utils.Created(ctx, note)
}

// GetNote returns one note.
func (n *NoteController) GetNote(ctx *gin.Context) {
	note, ok := n.findNote(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, note)
}

// UpdateNote applies a partial update.
func (n *NoteController) UpdateNote(ctx *gin.Context) {
	note, ok := n.findNote(ctx)
	if !ok {
		return
	}

	var req struct {
		Title      *string  `json:"title"`
		Content    *string  `json:"content"`
		Categories []string `json:"categories"`
		IsFavorite *bool    `json:"is_favorite"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	if req.Title != nil {
		note.Title = utils.SanitizeText(*req.Title)
		if note.Title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
			return
		}
	}
	if req.Content != nil {
		note.Content = utils.SanitizeRich(*req.Content)
	}
	if req.Categories != nil {
		note.Categories = datatypes.JSONSlice[string](noteCategories(req.Categories))
	}
	if req.IsFavorite != nil {
		note.IsFavorite = *req.IsFavorite
	}

	if err := n.db.Save(&note).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to update note")
		return
	}
	utils.Success(ctx, note)
}

// DeleteNote removes a note.
func (n *NoteController) DeleteNote(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	res := n.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Note{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to delete note")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "note not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "note deleted"})
}

func (n *NoteController) findNote(ctx *gin.Context) (models.Note, bool) {
	var note models.Note
	userID, ok := requireUser(ctx)
	if !ok {
		return note, false
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return note, false
	}

	if err := n.db.Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "note not found")
			return note, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to get note")
		return note, false
	}
	return note, true
}

func noteCategories(in []string) []string {
	out := cleanList(in)
	if len(out) == 0 {
		return []string{defaultNoteCategory}
	}
	return out
}
