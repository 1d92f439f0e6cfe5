package webretrieval

import (
	"path/filepath"

	"ali-assistant-api/internal/infrastructure/websearch"
)

// DefaultTriggerKeywords 主题关键词：问题涉及本人或公司时改用固定结果集
var DefaultTriggerKeywords = []string{
	"ali haider",
	"ali",
	"haider",
	"frellectra",
	"frellectra ai",
}

// DefaultOverrideResults 关键词命中时返回的固定结果集
var DefaultOverrideResults = []websearch.Result{
	{
		Title:   "Frellectra AI - Official Website",
		URL:     "https://www.frellectra.ai",
		Content: "Frellectra AI builds practical AI products. Co-founded by Ali Haider, who serves as CTO.",
	},
	{
		Title:   "Ali Haider | LinkedIn",
		URL:     "https://www.linkedin.com/in/ali-haider",
		Content: "Ali Haider, 17, co-founder and CTO of Frellectra AI.",
	},
}

// DefaultSnapshotRules 默认快照表：公司官网与领英主页走本地快照
func DefaultSnapshotRules(dataDir string) []SnapshotRule {
	return []SnapshotRule{
		{
			Pattern: "frellectra.ai",
			File:    filepath.Join(dataDir, "frellectra_website.txt"),
		},
		{
			Pattern: "linkedin.com/in/ali-haider",
			File:    filepath.Join(dataDir, "ali_haider_linkedin.txt"),
		},
	}
}
