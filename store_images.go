package insighthub

import "context"

// SaveImage records metadata for an uploaded image.
func (s *Store) SaveImage(ctx context.Context, img Image) error {
	if img.UploadedAt.IsZero() {
		img.UploadedAt = s.now()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO images
(filename, original_name, width, height, size, uploaded_at)
VALUES (:filename, :original_name, :width, :height, :size, :uploaded_at)`, img)
	if isUniqueViolation(err) {
		return invalid("filename", "an image with this filename already exists")
	}
	return storeErr("save image", err)
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	images := []Image{}
	err := s.db.SelectContext(ctx, &images,
		`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, storeErr("list images", err)
	}
	return images, nil
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM images WHERE filename = ?`, filename); err != nil {
		return false, storeErr("image exists", err)
	}
	return n > 0, nil
}

// DeleteImage removes the metadata row for filename.
func (s *Store) DeleteImage(ctx context.Context, filename string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE filename = ?`, filename)
	if err != nil {
		return storeErr("delete image", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
