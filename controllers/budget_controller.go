package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/gamification"
	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

const (
	maxBudgetSheets   = 100
	maxBudgetRows     = 5000
	maxImportBytes    = 5 << 20
	importFormField   = "file"
	exportContentType = "text/csv"
)

var errTooManyRows = errors.New("too many rows")

// BudgetController serves budget sheets, their rows, and CSV import/export.
type BudgetController struct {
	db   *gorm.DB
	game *gamification.Service
}

// NewBudgetController creates a BudgetController.
func NewBudgetController(db *gorm.DB, game *gamification.Service) *BudgetController {
	return &BudgetController{db: db, game: game}
}

// ListSheets returns the user's sheets in display order.
func (b *BudgetController) ListSheets(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	sheets := make([]models.BudgetSheet, 0)
	if err := b.db.Where("user_id = ?", userID).
		Order("sort_order ASC").Order("id ASC").
		Limit(maxBudgetSheets).
		Find(&sheets).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list sheets")
		return
	}
	utils.Success(ctx, sheets)
}

// CreateSheet appends a sheet.
func (b *BudgetController) CreateSheet(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=255"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	sheet := models.BudgetSheet{UserID: userID, Name: utils.SanitizeText(req.Name)}
	if sheet.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "name cannot be empty")
		return
	}

	next, err := nextSortOrder(b.db.Model(&models.BudgetSheet{}).Where("user_id = ?", userID))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create sheet")
		return
	}
	sheet.Order = next
	if err := b.db.Create(&sheet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create sheet")
		return
	}
	utils.Created(ctx, sheet)
}

// UpdateSheet renames or moves a sheet.
func (b *BudgetController) UpdateSheet(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Order *int    `json:"order"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}
	if req.Name != nil {
		sheet.Name = utils.SanitizeText(*req.Name)
		if sheet.Name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40061, "name cannot be empty")
			return
		}
	}
	if req.Order != nil {
		sheet.Order = *req.Order
	}

	if err := b.db.Save(&sheet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update sheet")
		return
	}
	utils.Success(ctx, sheet)
}

// DeleteSheet removes a sheet and all of its rows.
func (b *BudgetController) DeleteSheet(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sheet_id = ? AND user_id = ?", sheet.ID, sheet.UserID).Delete(&models.BudgetRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sheet).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete sheet")
		return
	}
	utils.Success(ctx, gin.H{"message": "sheet and all its rows deleted"})
}

// ListRows returns a sheet's rows in order.
func (b *BudgetController) ListRows(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	rows, err := b.sheetRows(sheet)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list rows")
		return
	}
	utils.Success(ctx, rows)
}

// CreateRow appends a row to a sheet and counts it as a logged expense.
func (b *BudgetController) CreateRow(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	var req struct {
		Date        string  `json:"date" binding:"max=32"`
		Description string  `json:"description" binding:"max=512"`
		Credit      float64 `json:"credit"`
		Debit       float64 `json:"debit"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid request payload")
		return
	}

	row := models.BudgetRow{
		SheetID:     sheet.ID,
		UserID:      sheet.UserID,
		Date:        utils.SanitizeText(req.Date),
		Description: utils.SanitizeText(req.Description),
		Credit:      req.Credit,
		Debit:       req.Debit,
	}
	err := b.db.Transaction(func(tx *gorm.DB) error {
		scope := tx.Model(&models.BudgetRow{}).Where("sheet_id = ?", sheet.ID)
		var count int64
		if err := scope.Count(&count).Error; err != nil {
			return err
		}
		if count >= maxBudgetRows {
			return errTooManyRows
		}
		next, err := nextSortOrder(tx.Model(&models.BudgetRow{}).Where("sheet_id = ?", sheet.ID))
		if err != nil {
			return err
		}
		row.Order = next
		return tx.Create(&row).Error
	})
	if errors.Is(err, errTooManyRows) {
		utils.Error(ctx, http.StatusBadRequest, 40064, "sheet is full")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to create row")
		return
	}

	b.logExpenses(ctx, sheet.UserID, 1)
	utils.Created(ctx, row)
}

// UpdateRow edits a row.
func (b *BudgetController) UpdateRow(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Date        *string  `json:"date"`
		Description *string  `json:"description"`
		Credit      *float64 `json:"credit"`
		Debit       *float64 `json:"debit"`
		Order       *int     `json:"order"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid request payload")
		return
	}

	var row models.BudgetRow
	if err := b.db.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40461, "row not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to get row")
		return
	}

	if req.Date != nil {
		row.Date = utils.SanitizeText(*req.Date)
	}
	if req.Description != nil {
		row.Description = utils.SanitizeText(*req.Description)
	}
	if req.Credit != nil {
		row.Credit = *req.Credit
	}
	if req.Debit != nil {
		row.Debit = *req.Debit
	}
	if req.Order != nil {
		row.Order = *req.Order
	}

	if err := b.db.Save(&row).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to update row")
		return
	}
	utils.Success(ctx, row)
}

// DeleteRow removes a row.
func (b *BudgetController) DeleteRow(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	res := b.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.BudgetRow{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to delete row")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40461, "row not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "row deleted"})
}

// ImportCSV appends rows from an uploaded CSV with columns date,
// source or description, debit and credit. Blank lines are skipped.
func (b *BudgetController) ImportCSV(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	fh, err := ctx.FormFile(importFormField)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40066, "csv file is required")
		return
	}
	if fh.Size > maxImportBytes {
		utils.Error(ctx, http.StatusBadRequest, 40067, "csv file is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40066, "csv file is required")
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxImportBytes))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40068, "failed to read csv")
		return
	}

	parsed, err := parseBudgetCSV(raw)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40068, fmt.Sprintf("failed to parse csv: %v", err))
		return
	}

	err = b.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BudgetRow{}).Where("sheet_id = ?", sheet.ID).Count(&count).Error; err != nil {
			return err
		}
		if int(count)+len(parsed) > maxBudgetRows {
			return errTooManyRows
		}
		next, err := nextSortOrder(tx.Model(&models.BudgetRow{}).Where("sheet_id = ?", sheet.ID))
		if err != nil {
			return err
		}
		if len(parsed) == 0 {
			return nil
		}
		for i := range parsed {
			parsed[i].SheetID = sheet.ID
			parsed[i].UserID = sheet.UserID
			parsed[i].Order = next + i
		}
		return tx.CreateInBatches(&parsed, 500).Error
	})
	if errors.Is(err, errTooManyRows) {
		utils.Error(ctx, http.StatusBadRequest, 40064, "sheet is full")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to import rows")
		return
	}

	b.logExpenses(ctx, sheet.UserID, len(parsed))
	utils.Success(ctx, gin.H{"message": fmt.Sprintf("imported %d rows", len(parsed)), "count": len(parsed)})
}

// ExportCSV streams a sheet as CSV.
func (b *BudgetController) ExportCSV(ctx *gin.Context) {
	sheet, ok := b.findSheet(ctx)
	if !ok {
		return
	}

	rows, err := b.sheetRows(sheet)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list rows")
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Date", "Description", "Credit", "Debit"})
	for _, r := range rows {
		_ = w.Write([]string{r.Date, r.Description, formatAmount(r.Credit), formatAmount(r.Debit)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to export rows")
		return
	}

	filename := strings.ReplaceAll(sheet.Name, " ", "_") + ".csv"
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, exportContentType, buf.Bytes())
}

func (b *BudgetController) logExpenses(ctx *gin.Context, userID uint, n int) {
	if err := b.game.OnExpenseLogged(ctx.Request.Context(), userID, n); err != nil {
		utils.Logger.Warn("expense_activity_skipped", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (b *BudgetController) findSheet(ctx *gin.Context) (models.BudgetSheet, bool) {
	var sheet models.BudgetSheet
	userID, ok := requireUser(ctx)
	if !ok {
		return sheet, false
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return sheet, false
	}

	if err := b.db.Where("id = ? AND user_id = ?", id, userID).First(&sheet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "sheet not found")
			return sheet, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to get sheet")
		return sheet, false
	}
	return sheet, true
}

func (b *BudgetController) sheetRows(sheet models.BudgetSheet) ([]models.BudgetRow, error) {
	rows := make([]models.BudgetRow, 0)
	err := b.db.Where("sheet_id = ? AND user_id = ?", sheet.ID, sheet.UserID).
		Order("sort_order ASC").Order("id ASC").
		Limit(maxBudgetRows).
		Find(&rows).Error
	return rows, err
}

// parseBudgetCSV reads rows keyed by a case-insensitive header. Input that is
// not UTF-8 is read as Latin-1. Unparseable amounts count as 0.
func parseBudgetCSV(raw []byte) ([]models.BudgetRow, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		runes := make([]rune, len(raw))
		for i, c := range raw {
			runes[i] = rune(c)
		}
		raw = []byte(string(runes))
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if key := strings.ToLower(strings.TrimSpace(h)); key != "" {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	field := func(rec []string, names ...string) string {
		for _, n := range names {
			if i, ok := cols[n]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
		}
		return ""
	}

	out := make([]models.BudgetRow, 0)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := models.BudgetRow{
			Date:        utils.SanitizeText(field(rec, "date")),
			Description: utils.SanitizeText(field(rec, "source", "description")),
			Debit:       parseAmount(field(rec, "debit")),
			Credit:      parseAmount(field(rec, "credit")),
		}
		if row.Date == "" && row.Description == "" && row.Debit == 0 && row.Credit == 0 {
			continue
		}
		out = append(out, row)
		if len(out) > maxBudgetRows {
			return nil, errTooManyRows
		}
	}
	return out, nil
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
