package services

import (
	"errors"
	"log"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// AuthorRef names a book author either by the ID of an existing Author
// (left) or by a display name that may not exist yet (right).
type AuthorRef = mo.Either[uint, string]

func ExistingAuthor(id uint) AuthorRef { return mo.Left[uint, string](id) }

func NewAuthor(name string) AuthorRef { return mo.Right[uint, string](name) }

// AuthorRefs builds the reference list from the two form inputs of the book
// editor: selected author IDs and free-text names.
func AuthorRefs(existingIDs []uint, newNames []string) []AuthorRef {
	refs := make([]AuthorRef, 0, len(existingIDs)+len(newNames))
	for _, id := range existingIDs {
		refs = append(refs, ExistingAuthor(id))
	}
	for _, name := range newNames {
		refs = append(refs, NewAuthor(name))
	}
	return refs
}

// normalizeAuthorRefs drops non-positive IDs and blank names, trims names and
// removes exact duplicates while keeping the submitted order.
func normalizeAuthorRefs(refs []AuthorRef) []AuthorRef {
	seenIDs := map[uint]struct{}{}
	seenNames := map[string]struct{}{}
	return lo.FilterMap(refs, func(ref AuthorRef, _ int) (AuthorRef, bool) {
		if id, ok := ref.Left(); ok {
			if id == 0 {
				return ref, false
			}
			if _, dup := seenIDs[id]; dup {
				return ref, false
			}
			seenIDs[id] = struct{}{}
			return ref, true
		}
		name := strings.TrimSpace(ref.MustRight())
		if name == "" {
			return ref, false
		}
		if _, dup := seenNames[name]; dup {
			return ref, false
		}
		seenNames[name] = struct{}{}
		return NewAuthor(name), true
	})
}

type authorReconciler struct {
	authorRepo repositories.AuthorRepository
}

// reconcile links the book to every referenced author inside tx. With
// replace set, all current links are removed first so the submitted list
// becomes the complete author set; otherwise links are only added.
// It returns the resolved author IDs in submission order.
func (a *authorReconciler) reconcile(tx *gorm.DB, isbn string, refs []AuthorRef, replace bool) ([]uint, error) {
	refs = normalizeAuthorRefs(refs)
	if len(refs) == 0 {
		return nil, validationErrorf("Please add at least one author")
	}

	if replace {
		if err := a.authorRepo.UnlinkAll(tx, isbn); err != nil {
			log.Printf("[ERROR] reconcileAuthors: failed to remove links for %s: %v", isbn, err)
			return nil, err
		}
	}

	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		id, err := a.resolve(tx, ref)
		if err != nil {
			return nil, err
		}
		if err := a.ensureLink(tx, isbn, id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

// resolve turns a reference into a concrete author ID, creating the author
// when a new name is not known yet.
func (a *authorReconciler) resolve(tx *gorm.DB, ref AuthorRef) (uint, error) {
	if id, ok := ref.Left(); ok {
		if _, err := a.authorRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, notFoundErrorf("Author %d not found", id)
			}
			return 0, err
		}
		return id, nil
	}
	return a.findOrCreate(tx, ref.MustRight())
}

// findOrCreate looks the author up by exact name and inserts it when absent.
// The insert runs in a savepoint: if a concurrent request created the same
// name first, the unique index rejects ours and the existing row is reused.
func (a *authorReconciler) findOrCreate(tx *gorm.DB, name string) (uint, error) {
	existing, err := a.authorRepo.FindByName(tx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	author := &models.Author{Name: name}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return a.authorRepo.Create(sp, author)
	})
	if err == nil {
		log.Printf("[INFO] reconcileAuthors: created author %q (id=%d)", name, author.ID)
		return author.ID, nil
	}
	if !isUniqueViolation(err) {
		log.Printf("[ERROR] reconcileAuthors: failed to create author %q: %v", name, err)
		return 0, err
	}
	log.Printf("[WARN] reconcileAuthors: author %q created concurrently, reusing it", name)
	existing, err = a.authorRepo.FindByName(tx, name)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// ensureLink inserts the (isbn, author) link unless it already exists.
func (a *authorReconciler) ensureLink(tx *gorm.DB, isbn string, authorID uint) error {
	exists, err := a.authorRepo.LinkExists(tx, isbn, authorID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := a.authorRepo.Link(tx, isbn, authorID); err != nil {
		log.Printf("[ERROR] reconcileAuthors: failed to link author %d to %s: %v", authorID, isbn, err)
		return err
	}
	return nil
}
