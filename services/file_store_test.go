package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	root := t.TempDir()
	store, err := NewFileStore(
		filepath.Join(root, "images"),
		filepath.Join(root, "cvs"),
		filepath.Join(root, "tools"),
	)
	require.NoError(t, err)
	return store
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"My cool movie.mov":          "My_cool_movie.mov",
		"../../../etc/passwd":        "etc_passwd",
		`..\\windows\\cmd.exe`:       "windows_cmd.exe",
		"i contain cool ümlauts.txt": "i_contain_cool_umlauts.txt",
		"Résumé 2024.pdf":            "Resume_2024.pdf",
		"...":                        "",
		"con.png":                    "_con.png",
		"photo (1).JPG":              "photo_1.JPG",
	}
	for in, want := range cases {
		require.Equal(t, want, SecureFilename(in), "input %q", in)
	}
}

func TestAllowed(t *testing.T) {
	store := newTestStore(t)

	require.True(t, store.Allowed(BucketImages, "shot.PNG"))
	require.True(t, store.Allowed(BucketImages, "paper.pdf"))
	require.True(t, store.Allowed(BucketTools, "logo.gif"))
	require.False(t, store.Allowed(BucketImages, "setup.exe"))
	require.False(t, store.Allowed(BucketImages, "README"))
	require.True(t, store.Allowed(BucketCVs, "cv.pdf"))
	require.False(t, store.Allowed(BucketCVs, "cv.docx"))
	require.False(t, store.Allowed(BucketCVs, "cv.png"))
}

func TestSaveWritesSanitizedName(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(BucketImages, fileHeader(t, "my project.png", []byte("png-bytes")))
	require.NoError(t, err)
	require.Equal(t, "my_project.png", name)
	require.True(t, store.Exists(BucketImages, name))

	path, err := store.Path(BucketImages, name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))
}

func TestSaveOverwritesSameName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(BucketCVs, fileHeader(t, "cv.pdf", []byte("v1")))
	require.NoError(t, err)
	name, err := store.Save(BucketCVs, fileHeader(t, "cv.pdf", []byte("v2")))
	require.NoError(t, err)

	path, _ := store.Path(BucketCVs, name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(BucketImages, fileHeader(t, "payload.exe", []byte("MZ")))
	require.True(t, errs.IsUnsupportedFileTypeError(err))
	require.False(t, store.Exists(BucketImages, "payload.exe"))

	_, err = store.Save(BucketCVs, fileHeader(t, "cv.png", []byte("x")))
	require.True(t, errs.IsUnsupportedFileTypeError(err))

	dir, _ := store.Dir(BucketCVs)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSaveRejectsEmptySanitizedName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(BucketImages, fileHeader(t, "ñ.png", []byte("x")))
	require.NoError(t, err)

	_, err = store.Save(BucketImages, fileHeader(t, "日本.png", []byte("x")))
	require.True(t, errs.IsInvalidFilenameError(err))
}

func TestRemoveIgnoresMissingFile(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(BucketTools, fileHeader(t, "logo.png", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(BucketTools, name))
	require.False(t, store.Exists(BucketTools, name))
	require.NoError(t, store.Remove(BucketTools, name))
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Path(BucketImages, "../secret.png")
	require.Error(t, err)
	_, err = store.Path(Bucket("other"), "a.png")
	require.Error(t, err)
}

func TestBuckets(t *testing.T) {
	store := newTestStore(t)
	require.Equal(t, []Bucket{BucketCVs, BucketImages, BucketTools}, store.Buckets())
}
