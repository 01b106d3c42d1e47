package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blog-api/internal/apperror"
	"blog-api/internal/models"
)

// Authors is the author data layer.
type Authors struct {
	*Repository[models.Author]
}

// NewAuthors creates the author repository.
func NewAuthors(db *gorm.DB, timeout time.Duration) *Authors {
	return &Authors{newRepository[models.Author](db, "author", timeout)}
}

// Delete removes the author and detaches it from every post.
func (r *Authors) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_authors WHERE author_id = ?", id).Error; err != nil {
			return r.translate(err, id, nil)
		}
		return r.delete(tx, id)
	})
}

// Posts is the post data layer.
type Posts struct {
	*Repository[models.Post]
}

// NewPosts creates the post repository.
func NewPosts(db *gorm.DB, timeout time.Duration) *Posts {
	r := newRepository[models.Post](db, "post", timeout, "Authors", "Comments")
	r.unique = func(p *models.Post) (string, any) { return "permalink", p.Permalink }
	return &Posts{r}
}

// loadAuthors fetches authors by id, failing with NotFound on the first missing one.
func loadAuthors(tx *gorm.DB, ids []string) ([]models.Author, error) {
	var found []models.Author
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Author, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]models.Author, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, apperror.NotFound("author", id)
		}
		out = append(out, a)
	}
	return out, nil
}

// Create persists post linked to the given existing authors.
func (r *Posts) Create(ctx context.Context, post *models.Post, authorIDs []string) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		authors, err := loadAuthors(tx, authorIDs)
		if err != nil {
			return r.translate(err, "", nil)
		}
		post.Authors = authors
		// link the authors without upserting them
		if err := tx.Omit("Authors.*").Create(post).Error; err != nil {
			return r.translate(err, "", post)
		}
		return nil
	})
}

// Update patches the post and, when authorIDs is non-nil, replaces its authors.
func (r *Posts) Update(ctx context.Context, id string, patch map[string]any, authorIDs []string) (*models.Post, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	db, cancel := r.session(ctx)
	defer cancel()

	var out *models.Post
	err := db.Transaction(func(tx *gorm.DB) error {
		post, err := r.first(tx, Filter{"id": id}, id)
		if err != nil {
			return err
		}
		if authorIDs != nil {
			authors, err := loadAuthors(tx, authorIDs)
			if err != nil {
				return r.translate(err, id, nil)
			}
			if err := tx.Model(post).Association("Authors").Replace(authors); err != nil {
				return r.translate(err, id, nil)
			}
		}
		if patch == nil {
			patch = make(map[string]any, 1)
		}
		patch["updated"] = time.Now().UTC()
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			if p, ok := patch["permalink"].(string); ok {
				post.Permalink = p
			}
			return r.translate(err, id, post)
		}
		out, err = r.first(tx, Filter{"id": id}, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByPermalink returns the post published under permalink.
func (r *Posts) FindByPermalink(ctx context.Context, permalink string) (*models.Post, error) {
	return r.FindBy(ctx, Filter{"permalink": permalink}, permalink)
}

// Delete removes the post together with its comments and author links.
func (r *Posts) Delete(ctx context.Context, id string) error {
	if err := parseID(id); err != nil {
		return err
	}
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return r.translate(err, id, nil)
		}
		if err := tx.Exec("DELETE FROM post_authors WHERE post_id = ?", id).Error; err != nil {
			return r.translate(err, id, nil)
		}
		return r.delete(tx, id)
	})
}

// Comments is the comment data layer.
type Comments struct {
	*Repository[models.Comment]
	posts *Posts
}

// NewComments creates the comment repository.
func NewComments(db *gorm.DB, posts *Posts, timeout time.Duration) *Comments {
	return &Comments{Repository: newRepository[models.Comment](db, "comment", timeout), posts: posts}
}

// Create persists a comment on an existing post.
func (r *Comments) Create(ctx context.Context, c *models.Comment) error {
	if err := r.posts.Exists(ctx, c.PostID); err != nil {
		return err
	}
	return r.Repository.Create(ctx, c)
}

// ForPost lists the comments of an existing post.
func (r *Comments) ForPost(ctx context.Context, postID string, page Page) ([]models.Comment, error) {
	if err := r.posts.Exists(ctx, postID); err != nil {
		return nil, err
	}
	return r.Find(ctx, Filter{"post_id": postID}, page)
}
