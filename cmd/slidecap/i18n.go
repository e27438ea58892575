// Package main provides localization for the slidecap CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Extract still slide images from videos of slide projections.": "スライド投影動画から静止スライド画像を抽出します。",

		// Extract command
		"Extract slide images from a projector video.": "プロジェクター動画からスライド画像を抽出",

		// Rotate command
		"Rotate extracted slides by quarter turns.": "抽出済みスライドを90度単位で回転",

		// Transform command
		"Re-crop saved photos through a corner mapping.": "保存済み写真をコーナーマッピングで再クロップ",

		// Version command
		"Show version information.": "バージョン情報を表示",
		"slidecap version %s":       "slidecap バージョン %s",

		// Runtime messages
		"Extracting slides from %s...":   "%s からスライドを抽出中...",
		"Interrupted, shutting down...":  "中断されました。シャットダウン中...",
		"Transforming photos from %s...": "%s の写真を変換中...",
		"Rotated %d slides in %s":        "%d 枚のスライドを回転しました（%s）",
	})
}
