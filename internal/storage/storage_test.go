package storage_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/storage"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func uploadRequest(field, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="pic"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(content)
	Expect(err).NotTo(HaveOccurred())
	Expect(mw.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, "/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var _ = Describe("Uploader", func() {
	var (
		root     string
		uploader *storage.Uploader
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		uploader = storage.NewUploader(storage.NewLocalBackend(root), 1024, logger.Discard())
	})

	store := func(req *http.Request, folder storage.Folder) (string, error) {
		return uploader.FromRequest(httptest.NewRecorder(), req, folder)
	}

	It("stores a png under a random hex name", func() {
		name, err := store(uploadRequest("file", "image/png", pngBytes), storage.FolderUsers)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(MatchRegexp(`^[0-9a-f]{32}\.png$`))

		stored, err := os.ReadFile(filepath.Join(root, "images", "users", name))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(pngBytes))
	})

	It("gives every upload a different name", func() {
		a, err := store(uploadRequest("file", "image/png", pngBytes), storage.FolderCompanies)
		Expect(err).NotTo(HaveOccurred())
		b, err := store(uploadRequest("file", "image/png", pngBytes), storage.FolderCompanies)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).NotTo(Equal(b))

		entries, err := os.ReadDir(filepath.Join(root, "images", "companies"))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
	})

	DescribeTable("rejections",
		func(req func() *http.Request, expected *internal.AppError) {
			_, err := store(req(), storage.FolderUsers)
			Expect(err).To(MatchError(expected))

			_, statErr := os.Stat(filepath.Join(root, "images"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		},
		Entry("missing field", func() *http.Request {
			return uploadRequest("avatar", "image/png", pngBytes)
		}, storage.ErrNoFile),
		Entry("not multipart", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		}, storage.ErrNoFile),
		Entry("declared type outside the allow-list", func() *http.Request {
			return uploadRequest("file", "image/gif", []byte("GIF89a......"))
		}, storage.ErrInvalidFormat),
		Entry("content does not match declared type", func() *http.Request {
			return uploadRequest("file", "image/png", []byte("<html>not an image</html>"))
		}, storage.ErrInvalidFormat),
		Entry("too large", func() *http.Request {
			return uploadRequest("file", "image/png", append(pngBytes, bytes.Repeat([]byte{1}, 2048)...))
		}, storage.ErrFileTooLarge),
	)

	It("keeps the sniffed prefix in the stored content", func() {
		content := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{7}, 700)...)
		name, err := store(uploadRequest("file", "image/png", content), storage.FolderUsers)
		Expect(err).NotTo(HaveOccurred())
		Expect(regexp.MustCompile(`\.png$`).MatchString(name)).To(BeTrue())

		stored, err := os.ReadFile(filepath.Join(root, "images", "users", name))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(content))
	})
})
