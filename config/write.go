package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// keyComments documents each key of the written default file.
var keyComments = map[string]string{
	"similarity_threshold": "Cosine similarity at or above which two questions share a cluster, in (0, 1].",
	"top_n":                "Clusters shown in the chart and summaries.",
	"watermark_ratio":      "Fraction of text pages a line must recur on to be dropped as a header, footer or stamp.",
	"min_watermark_pages":  "Documents with fewer text pages keep every line.",
	"chart_path":           "Where the cluster bar chart is written.",
	"parallelism":          "Papers extracted concurrently.",
	"max_file_size":        "Largest accepted paper, in bytes.",
	"allowed_extensions":   "Accepted paper types. Supported: .pdf .docx .odt .txt .md .html",
	"pdf_backend":          "rows (glyph rows, default) or stream (content-stream operators).",
	"analysis_timeout":     "Deadline for one analysis served over HTTP.",
	"log_level":            "debug, info, warn or error.",
	"log_format":           "json or text.",
	"listen_addr":          "Address for paperlens serve.",
	"feedback_path":        "Flat file that collects feedback entries.",
	"embedding":            "Question vectors. Backends: tfidf (offline), openai (any OpenAI-compatible server), none.",
	"api_key":              "Use ${ENV_VAR} to reference an environment variable.",
}

// WriteDefault writes the default configuration, with comments, to path.
func WriteDefault(path string) error {
	var doc yaml.Node
	if err := doc.Encode(Default()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	annotate(&doc)
	doc.HeadComment = "paperlens configuration\nEnvironment variables PAPERLENS_<KEY> override file values (PAPERLENS_EMBEDDING_MODEL, ...)."

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func annotate(n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if c, ok := keyComments[key.Value]; ok {
			key.HeadComment = c
		}
		annotate(val)
	}
}
