package insighthub

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/insighthub/content"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 5 << 20 // 5MB
	// maxImagePixels bounds width*height before the full decode.
	maxImagePixels = 40_000_000
	uploadsSubdir  = "uploads"

	filenameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	filenameIDLength = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// processImage checks the declared dimensions, decodes an image from data, resizes it to maxImageWidth when
// wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(data []byte, originalName string) (Image, []byte, error) {
	if ct := http.DetectContentType(data); !allowedImageTypes[ct] {
		return Image{}, nil, invalid("file", "Only JPEG, PNG, GIF, and WebP images are allowed")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, nil, invalid("file", "Invalid image: "+err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return Image{}, nil, invalid("file", fmt.Sprintf("Image dimensions %dx%d are too large", cfg.Width, cfg.Height))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, nil, invalid("file", "Invalid image: "+err.Error())
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return Image{
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
	}, buf.Bytes(), nil
}

// uploadFilename builds "<slug>-<random>.jpg" from the client file name.
func uploadFilename(originalName string) (string, error) {
	base := content.Slugify(strings.TrimSuffix(originalName, filepath.Ext(originalName)))
	if len(base) > 40 {
		base = strings.TrimRight(base[:40], "-")
	}
	if base == "" {
		base = "image"
	}
	id, err := gonanoid.Generate(filenameAlphabet, filenameIDLength)
	if err != nil {
		return "", err
	}
	return base + "-" + id + ".jpg", nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadSize {
		return nil, invalid("file", "File too large (max 5MB)")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadSize {
		return nil, invalid("file", "File too large (max 5MB)")
	}
	return data, nil
}

// upload stores the multipart file in field under <static>/uploads and
// records its metadata.
func (a *App) upload(c echo.Context, field string) (Image, error) {
	ctx := c.Request().Context()
	fh, err := c.FormFile(field)
	if err != nil {
		return Image{}, invalid(field, "No file uploaded")
	}
	data, err := readUpload(fh)
	if err != nil {
		return Image{}, err
	}
	img, encoded, err := processImage(data, fh.Filename)
	if err != nil {
		return Image{}, err
	}

	for {
		name, err := uploadFilename(fh.Filename)
		if err != nil {
			return Image{}, err
		}
		exists, err := a.Store.ImageExists(ctx, name)
		if err != nil {
			return Image{}, err
		}
		if !exists {
			img.Filename = name
			break
		}
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Image{}, fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), encoded, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(ctx, img); err != nil {
		_ = os.Remove(filepath.Join(dir, img.Filename))
		return Image{}, err
	}
	a.Log.Infow("image uploaded", "filename", img.Filename, "bytes", img.Size)
	return img, nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	if _, err := a.upload(c, "image"); err != nil {
		if IsValidation(err) {
			return a.renderImageList(c, err.Error())
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/images/?msg=uploaded")
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	if err := a.Store.DeleteImage(c.Request().Context(), filename); err != nil && !IsNotFound(err) {
		return err
	}
	_ = os.Remove(filepath.Join(a.Config.StaticDir, uploadsSubdir, filename))
	return c.Redirect(http.StatusSeeOther, "/admin/images/?msg=deleted")
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c, c.QueryParam("msg"))
}

func (a *App) renderImageList(c echo.Context, msg string) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(AdminImagesPage{
		CSRF:    CsrfToken(c),
		Images:  images,
		Message: msg,
	}))
}

// adminRedirect sends the browser back to the dashboard with a flash message.
func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}
