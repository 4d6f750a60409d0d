package application

import (
	"context"
	"path"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/atvirokodosprendimai/assettrack/internal/metrics"
)

type NoteInput struct {
	UserID     string   `json:"User_ID" validate:"notblank"`
	Head       string   `json:"Note_Head" validate:"notblank"`
	Body       string   `json:"Note"`
	CreateDate string   `json:"Note_CreateDate"`
	Images     []string `json:"Note_Images" validate:"dive,notblank"`
}

func (s *InventoryService) ListNotes(ctx context.Context) ([]domain.NoteView, error) {
	return s.repo.ListNotes(ctx)
}

func (s *InventoryService) ListNotesByUser(ctx context.Context, userID string) ([]domain.AuthoredNote, error) {
	return s.repo.ListNotesByUser(ctx, userID)
}

func (s *InventoryService) SearchNotes(ctx context.Context, searchType domain.NoteSearchType, term string) ([]domain.NoteView, error) {
	return s.repo.SearchNotes(ctx, searchType, term)
}

func (s *InventoryService) ListNoteImages(ctx context.Context, noteID string) ([]domain.NoteImage, error) {
	return s.repo.ListNoteImages(ctx, noteID)
}

func (s *InventoryService) CreateNote(ctx context.Context, in NoteInput) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	now := s.timestamp()
	note := domain.Note{
		UserID:           in.UserID,
		Head:             in.Head,
		Body:             in.Body,
		CreateDate:       defaultString(in.CreateDate, now),
		LastModifiedDate: now,
	}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		id, err := allocate(ctx, tx, domain.NoteSeq)
		if err != nil {
			return err
		}
		note.NoteID = id
		if err := tx.CreateNote(ctx, note); err != nil {
			return err
		}
		return attachImages(ctx, tx, id, in.Images)
	})
	if err != nil {
		return "", err
	}
	return note.NoteID, nil
}

// UpdateNote rewrites a note and replaces its image list.
func (s *InventoryService) UpdateNote(ctx context.Context, noteID string, in NoteInput) error {
	if err := check(in); err != nil {
		return err
	}

	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		current, err := tx.GetNote(ctx, noteID)
		if err != nil {
			return err
		}
		current.UserID = in.UserID
		current.Head = in.Head
		current.Body = in.Body
		current.CreateDate = defaultString(in.CreateDate, current.CreateDate)
		current.LastModifiedDate = s.timestamp()
		if _, err := tx.UpdateNote(ctx, current); err != nil {
			return err
		}
		if _, err := tx.DeleteNoteImages(ctx, noteID); err != nil {
			return err
		}
		return attachImages(ctx, tx, noteID, in.Images)
	})
}

// DeleteNote removes the note and its image rows, then the image files.
// A file that cannot be removed is logged and left behind.
func (s *InventoryService) DeleteNote(ctx context.Context, noteID string) error {
	var images []domain.NoteImage
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetNote(ctx, noteID); err != nil {
			return err
		}
		var err error
		if images, err = tx.ListNoteImages(ctx, noteID); err != nil {
			return err
		}
		if _, err := tx.DeleteNoteImages(ctx, noteID); err != nil {
			return err
		}
		ok, err := tx.DeleteNote(ctx, noteID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("Note %s not found", noteID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, img := range images {
		key := imageKey(img.ImagePath)
		if key == "" {
			continue
		}
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			metrics.BlobErrors.WithLabelValues("delete").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("note_id", noteID).Str("key", key).Msg("delete note image")
		}
	}
	return nil
}

func attachImages(ctx context.Context, tx domain.InventoryRepository, noteID string, paths []string) error {
	for _, p := range paths {
		id, err := allocate(ctx, tx, domain.NoteImageSeq)
		if err != nil {
			return err
		}
		if err := tx.AddNoteImage(ctx, domain.NoteImage{ImageID: id, NoteID: noteID, ImagePath: p}); err != nil {
			return err
		}
	}
	return nil
}

// imageKey maps a stored image path such as "uploads/abc.jpg" to its blob key.
func imageKey(imagePath string) string {
	key := path.Base(strings.ReplaceAll(strings.TrimSpace(imagePath), "\\", "/"))
	if key == "." || key == "/" {
		return ""
	}
	return key
}
