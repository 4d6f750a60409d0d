package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) CreateNote(ctx context.Context, value domain.Note) error {
	m := NoteModel{
		NoteID:           value.NoteID,
		UserID:           value.UserID,
		Head:             value.Head,
		Body:             value.Body,
		CreateDate:       value.CreateDate,
		LastModifiedDate: value.LastModifiedDate,
	}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateNote(ctx context.Context, value domain.Note) (bool, error) {
	res := r.db.WithContext(ctx).Model(&NoteModel{}).Where("note_id = ?", value.NoteID).Updates(map[string]any{
		"user_id":               value.UserID,
		"note_head":             value.Head,
		"note":                  value.Body,
		"note_createdate":       value.CreateDate,
		"note_lastmodifieddate": value.LastModifiedDate,
	})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetNote(ctx context.Context, noteID string) (domain.Note, error) {
	var m NoteModel
	if err := r.db.WithContext(ctx).Where("note_id = ?", noteID).First(&m).Error; err != nil {
		return domain.Note{}, notFound(err, "Note %s not found", noteID)
	}
	return m.toDomain(), nil
}

func (r *Repository) DeleteNote(ctx context.Context, noteID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&NoteModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

type noteViewRow struct {
	NoteModel
	Name     sql.NullString
	RoleName sql.NullString
}

const noteViewSelect = `
	SELECT n.note_id, n.user_id, n.note_head, n.note, n.note_createdate, n.note_lastmodifieddate,
		u.name, ro.rolename AS role_name
	FROM note n
	LEFT JOIN user_nt u ON n.user_id = u.user_id
	LEFT JOIN role ro ON u.role_id = ro.role_id`

func (r *Repository) ListNotes(ctx context.Context) ([]domain.NoteView, error) {
	rows := make([]noteViewRow, 0)
	if err := r.db.WithContext(ctx).Raw(noteViewSelect + " ORDER BY n.note_id").Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	return noteViews(rows), nil
}

func (r *Repository) SearchNotes(ctx context.Context, searchType domain.NoteSearchType, term string) ([]domain.NoteView, error) {
	q := noteViewSelect + " WHERE 1=1"
	args := make([]any, 0, 3)
	if term = strings.TrimSpace(term); term != "" {
		switch searchType {
		case domain.NoteSearchName:
			q += " AND u.name LIKE ?"
			args = append(args, like(term))
		case domain.NoteSearchTitle:
			q += " AND n.note_head LIKE ?"
			args = append(args, like(term))
		case domain.NoteSearchDate:
			q += " AND SUBSTR(n.note_createdate, 1, 10) = ?"
			args = append(args, term)
		default:
			q += " AND (u.name LIKE ? OR n.note_head LIKE ? OR n.note LIKE ?)"
			args = append(args, like(term), like(term), like(term))
		}
	}
	q += " ORDER BY n.note_createdate DESC, n.note_id DESC"

	rows := make([]noteViewRow, 0)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	return noteViews(rows), nil
}

func noteViews(rows []noteViewRow) []domain.NoteView {
	result := make([]domain.NoteView, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.NoteView{
			Note:     rr.NoteModel.toDomain(),
			Name:     nullable(rr.Name),
			RoleName: nullable(rr.RoleName),
		})
	}
	return result
}

func (r *Repository) ListNotesByUser(ctx context.Context, userID string) ([]domain.AuthoredNote, error) {
	type row struct {
		NoteModel
		Author string
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT n.note_id, n.user_id, n.note_head, n.note, n.note_createdate, n.note_lastmodifieddate, u.name AS author
		FROM note n
		JOIN user_nt u ON n.user_id = u.user_id
		WHERE n.user_id = ?
		ORDER BY n.note_createdate DESC, n.note_id DESC`, userID).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.AuthoredNote, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.AuthoredNote{Note: rr.NoteModel.toDomain(), Author: rr.Author})
	}
	return result, nil
}

func (r *Repository) AddNoteImage(ctx context.Context, value domain.NoteImage) error {
	m := NoteImageModel{ImageID: value.ImageID, NoteID: value.NoteID, ImagePath: value.ImagePath}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) ListNoteImages(ctx context.Context, noteID string) ([]domain.NoteImage, error) {
	rows := make([]NoteImageModel, 0)
	if err := r.db.WithContext(ctx).Where("note_id = ?", noteID).Order("image_id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.NoteImage, 0, len(rows))
	for _, m := range rows {
		result = append(result, domain.NoteImage{ImageID: m.ImageID, NoteID: m.NoteID, ImagePath: m.ImagePath})
	}
	return result, nil
}

func (r *Repository) DeleteNoteImages(ctx context.Context, noteID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&NoteImageModel{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}
