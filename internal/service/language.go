package service

import (
	"path"
	"strings"
)

const defaultLanguage = "javascript"

var extensionLanguages = map[string]string{
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"cpp":   "cpp",
	"c":     "c",
	"py":    "python",
	"java":  "java",
	"html":  "html",
	"htm":   "html",
	"css":   "css",
	"scss":  "scss",
	"sass":  "sass",
	"json":  "json",
	"xml":   "xml",
	"php":   "php",
	"rb":    "ruby",
	"go":    "go",
	"rs":    "rust",
	"swift": "swift",
	"kt":    "kotlin",
	"dart":  "dart",
	"sql":   "sql",
	"sh":    "bash",
	"md":    "markdown",
	"yml":   "yaml",
	"yaml":  "yaml",
	"txt":   "text",
}

// InferLanguage 以请求的语言（小写，缺省 javascript）为起点，
// 文件扩展名在表中时以扩展名为准。
func InferLanguage(fileName, requested string) string {
	lang := strings.ToLower(strings.TrimSpace(requested))
	if lang == "" {
		lang = defaultLanguage
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if known, ok := extensionLanguages[ext]; ok {
		return known
	}
	return lang
}
