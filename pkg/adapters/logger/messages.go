package logger

import "github.com/ideamans/go-l10n"

func init() {
	// Japanese translations for pipeline log messages.
	l10n.Register("ja", l10n.LexiconMap{
		"Scanning frames":                            "フレームをスキャン中",
		"Rectifying to %dx%d (aspect %s)":            "%dx%d に補正します（アスペクト比 %s）",
		"Captured slide %d (frame %d) to %s":         "スライド %d（フレーム %d）を %s に保存しました",
		"Skipping slide at frame %d: %s":             "フレーム %d のスライドをスキップします: %s",
		"Failed to build rectification mapping: %s":  "補正マッピングの作成に失敗しました: %s",
		"Failed to write slide %d: %s":               "スライド %d の書き込みに失敗しました: %s",
		"Failed to save signal diagnostics: %s":      "シグナル診断の保存に失敗しました: %s",
		"Failed to save corner set: %s":              "コーナー情報の保存に失敗しました: %s",
		"Failed to save corner preview: %s":          "コーナープレビューの保存に失敗しました: %s",
		"Done: %d slides captured from %d frames":    "完了: %d 枚のスライドを %d フレームから抽出しました",
		"Stream ended at frame %d":                   "フレーム %d でストリームが終了しました",
		"Transformed frame %d to %s":                 "フレーム %d を %s に変換しました",
		"Done: %d photos transformed from %d frames": "完了: %d 枚の写真を %d フレームから変換しました",
	})
}
