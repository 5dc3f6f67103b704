package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Capture manager
		"Capture output failed: %v":         "キャプチャ出力に失敗しました: %v",
		"Mirror %v":                         "ミラー表示: %v",
		"Recording %s at %.1f fps":          "%s を %.1f fps で録画中",
		"Recording requested to %s":         "%s への録画を要求しました",
		"Recording stopped after %d frames": "%d フレームで録画を停止しました",
		"Release failed: %v":                "解放に失敗しました: %v",
		"Settings dialog unavailable: %v":   "設定ダイアログは利用できません: %v",
		"Snapshot %s skipped, snapshots are disabled": "スナップショットが無効のため %s をスキップしました",
		"Snapshot saved to %s":              "スナップショットを %s に保存しました",

		// Zones
		"Zone %d locked on %s":            "ゾーン %d を %s で捕捉しました",
		"Zone %d lost, holding %s":        "ゾーン %d を見失いました。%s を保持します",
		"Zone %d placed at %s":            "ゾーン %d を %s に配置しました",
		"Zone %d requested, %d available": "ゾーン %d が要求されましたが、利用可能なのは %d 個です",
		"Zone initialisation failed: %v":  "ゾーンの初期化に失敗しました: %v",

		// Detector
		"Detector stopping":               "検出器を停止します",
		"Frame delay %d ms":               "フレーム間隔 %d ms",
		"Frame processing failed: %v":     "フレーム処理に失敗しました: %v",
		"Stream ended after %d frames":    "%d フレームでストリームが終了しました",
		"Tracking ready after %d frames":  "%d フレームで追跡の準備ができました",
		"Tracking restarted":              "追跡を再開しました",

		// Session
		"Opened %s with %s: %dx%d":      "%s を %s で開きました: %dx%d",
		"Frame size %dx%d rejected: %v": "フレームサイズ %dx%d は拒否されました: %v",
		"Preview unavailable: %v":       "プレビューは利用できません: %v",
		"Tracking %d zones with %s":     "%d 個のゾーンを %s で追跡します",
		"Summary written to %s":         "サマリーを %s に書き出しました",
		"Summary not written: %v":       "サマリーを書き出せませんでした: %v",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
	})
}
