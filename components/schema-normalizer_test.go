package components

import (
	"testing"

	"github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/schema"
	"github.com/relloyd/stageload/stream"
)

func apodRow(m map[string]interface{}) stream.Record {
	return stream.NewRecordFromMap(m)
}

func TestNormalizeRows(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	log := logger.NewLogger("stageload", "debug", true)
	s := schema.NasaApodSchema()

	// Test 1, aliases and case-insensitive names resolve; unknown columns are dropped.
	log.Info("Test 1, aliases resolve to canonical fields...")
	header := []string{"Date", "TITLE", "explanation", "url", "media", "created_at", "copyright"}
	in := []stream.Record{
		apodRow(map[string]interface{}{"Date": "2024-01-01", "TITLE": "t1", "explanation": "e1", "url": "http://a", "media": "image", "created_at": "2024-01-01 10:00:00", "copyright": "x"}),
		apodRow(map[string]interface{}{"Date": "2024-01-02", "TITLE": "t2", "explanation": "e2", "url": "http://b", "media": "video", "created_at": "2024-01-02 10:00:00", "copyright": "y"}),
	}
	out, err := NormalizeRows(&SchemaNormalizerConfig{Log: log, Schema: s, Header: header}, in)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(out).To(gomega.HaveLen(2))
	for _, rec := range out {
		g.Expect(rec.GetSortedDataMapKeys()).To(gomega.ConsistOf("date", "title", "explanation", "media_type", "image_url", "inserted_at"))
	}
	g.Expect(out[0].GetData("image_url")).To(gomega.Equal("http://a"))
	g.Expect(out[1].GetData("title")).To(gomega.Equal("t2"))
	g.Expect(out[1].GetData("inserted_at")).To(gomega.Equal("2024-01-02 10:00:00"))
	// Input is unchanged.
	g.Expect(in[0].HasData("url")).To(gomega.BeTrue())
	g.Expect(in[0].HasData("image_url")).To(gomega.BeFalse())

	// Test 2, fillable fields are filled with nil.
	log.Info("Test 2, missing fillable fields are nil...")
	header = []string{"date", "title", "explanation", "inserted_at"}
	in = []stream.Record{apodRow(map[string]interface{}{"date": "2024-01-01", "title": "t", "explanation": "e", "inserted_at": "2024-01-01T00:00:00"})}
	out, err = NormalizeRows(&SchemaNormalizerConfig{Log: log, Schema: s, Header: header}, in)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(out[0].HasData("media_type")).To(gomega.BeTrue())
	g.Expect(out[0].GetData("media_type")).To(gomega.BeNil())
	g.Expect(out[0].GetData("image_url")).To(gomega.BeNil())

	// Test 3, missing strict fields fail with every field listed.
	log.Info("Test 3, missing strict fields give SchemaError...")
	_, err = NormalizeRows(&SchemaNormalizerConfig{Log: log, Schema: s, Header: []string{"title", "url"}}, nil)
	var se *SchemaError
	g.Expect(errors.As(err, &se)).To(gomega.BeTrue())
	g.Expect(se.MissingFields).To(gomega.Equal([]string{"date", "explanation", "inserted_at"}))
	g.Expect(se.Error()).To(gomega.ContainSubstring("date, explanation, inserted_at"))

	// Test 4, an empty row set with a good header is valid.
	out, err = NormalizeRows(&SchemaNormalizerConfig{Log: log, Schema: s, Header: header}, []stream.Record{})
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(out).To(gomega.BeEmpty())
}

func TestResolveColumnsConflicts(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	log := logger.NewLogger("stageload", "info", true)
	s := schema.NasaApodSchema()
	base := []string{"date", "title", "explanation", "inserted_at"}

	// Test 1, exact canonical name beats an alias that appears earlier.
	res, err := ResolveColumns(log, s, append([]string{"url"}, append(base, "image_url")...))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(res.Mapping).To(gomega.HaveKeyWithValue("image_url", "image_url"))
	g.Expect(res.Mapping).NotTo(gomega.HaveKey("url"))
	g.Expect(res.Dropped).To(gomega.ContainElement("url"))

	// Test 2, between two aliases the first wins.
	res, err = ResolveColumns(log, s, append(base, "hdurl", "url"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(res.Mapping).To(gomega.HaveKeyWithValue("hdurl", "image_url"))
	g.Expect(res.Dropped).To(gomega.Equal([]string{"url"}))
	g.Expect(res.Filled).To(gomega.Equal([]string{"media_type"}))

	// Test 3, canonical first then alias keeps the canonical column.
	res, err = ResolveColumns(log, s, append(base, "image_url", "img_url"))
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(res.Mapping).To(gomega.HaveKeyWithValue("image_url", "image_url"))
	g.Expect(res.Dropped).To(gomega.Equal([]string{"img_url"}))
}

func TestNormalizeRowsWithoutHeader(t *testing.T) {
	g := gomega.NewGomegaWithT(t)
	log := logger.NewLogger("stageload", "info", true)
	in := []stream.Record{stream.NewRecordFromMap(map[string]interface{}{
		"Sepal.Length": "5.1", "Sepal.Width": "3.5", "Petal.Length": "1.4", "Petal.Width": "0.2", "Variety": "Setosa",
	})}
	out, err := NormalizeRows(&SchemaNormalizerConfig{Log: log, Schema: schema.IrisSchema()}, in)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(out[0].GetData("sepal_length")).To(gomega.Equal("5.1"))
	g.Expect(out[0].GetData("species")).To(gomega.Equal("Setosa"))
	g.Expect(out[0].GetData("is_petal_long")).To(gomega.BeNil())
}
