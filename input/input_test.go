package input

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/aws/s3"
	"github.com/relloyd/stageload/logger"
)

func TestResolvePath(t *testing.T) {
	cases := []struct {
		dir, override, def, expected string
	}{
		{"/pipe", "", "iris_transformed.csv", "/pipe/Data/Staged/iris_transformed.csv"},
		{"/pipe", "other.csv", "x.csv", "/pipe/other.csv"},
		{"/pipe", "/abs/x.csv", "y.csv", "/abs/x.csv"},
		{"/pipe", "s3://bkt/k.csv", "y.csv", "s3://bkt/k.csv"},
	}
	for idx, c := range cases {
		if got := ResolvePath(c.dir, c.override, c.def); got != c.expected {
			t.Fatalf("Test %v, expected %v; got %v", idx+1, c.expected, got)
		}
	}
}

func TestReadCSV(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	log := logger.NewLogger("stageload", "info", true)
	data := "\uFEFFdate, title ,url,title\n2024-01-01,t1,,dup\n2024-01-02,\"t, 2\",http://x,dup\n"
	sf, err := ReadCSV(log, strings.NewReader(data))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(sf.Header).To(gomega.Equal([]string{"date", "title", "url"}))
	g.Expect(sf.Rows).To(gomega.HaveLen(2))
	g.Expect(sf.Rows[0].GetData("url")).To(gomega.BeNil())
	g.Expect(sf.Rows[1].GetData("title")).To(gomega.Equal("t, 2"))
	g.Expect(sf.Rows[1].GetDataLen()).To(gomega.Equal(3))

	// Header only.
	sf, err = ReadCSV(log, strings.NewReader("a,b\n"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(sf.Rows).To(gomega.BeEmpty())

	// Empty and ragged input.
	_, err = ReadCSV(log, strings.NewReader(""))
	g.Expect(err).To(gomega.HaveOccurred())
	_, err = ReadCSV(log, strings.NewReader("a,b\n1,2,3\n"))
	g.Expect(err).To(gomega.HaveOccurred())
}

type fakeGetter struct {
	data map[string]string
}

func (f *fakeGetter) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, s3.ErrKeyNotFound
	}
	return []byte(v), nil
}

func TestReadStagedFile(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	log := logger.NewLogger("stageload", "info", true)
	ctx := context.Background()
	dir, err := ioutil.TempDir("", "staged-")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	defer os.RemoveAll(dir)

	// Test 1, local file.
	p := filepath.Join(dir, "iris.csv")
	g.Expect(ioutil.WriteFile(p, []byte("species\nsetosa\n"), 0600)).To(gomega.Succeed())
	sf, err := ReadStagedFile(ctx, &StagedFileReaderConfig{Log: log, Path: p})
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(sf.Path).To(gomega.Equal(p))
	g.Expect(sf.Rows).To(gomega.HaveLen(1))

	// Test 2, missing local file.
	_, err = ReadStagedFile(ctx, &StagedFileReaderConfig{Log: log, Path: filepath.Join(dir, "nope.csv")})
	var mfe *MissingFileError
	g.Expect(errors.As(err, &mfe)).To(gomega.BeTrue())
	g.Expect(err.Error()).To(gomega.ContainSubstring("run the transform step first"))

	// Test 3, S3 object and missing S3 object.
	getter := &fakeGetter{data: map[string]string{"Data/Staged/x.csv": "a\n1\n2\n"}}
	sf, err = ReadStagedFile(ctx, &StagedFileReaderConfig{Log: log, Path: "s3://bkt/Data/Staged/x.csv", S3Client: getter})
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(sf.Rows).To(gomega.HaveLen(2))
	_, err = ReadStagedFile(ctx, &StagedFileReaderConfig{Log: log, Path: "s3://bkt/nope.csv", S3Client: getter})
	g.Expect(errors.As(err, &mfe)).To(gomega.BeTrue())
}
