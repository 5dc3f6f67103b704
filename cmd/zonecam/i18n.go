// Package main provides localization for the zonecam CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Commands
		"Track screen zones from a camera to drive a game": "カメラ映像のゾーンを追跡してゲームを操作します",
		"Track zones and publish their displacement":       "ゾーンを追跡し、その変位を公開します",
		"Show, snapshot and record a capture source":       "キャプチャソースを表示・撮影・録画します",
		"List the available tracking algorithms":           "利用可能な追跡アルゴリズムを一覧表示します",
		"Show version information":                         "バージョン情報を表示します",
		"zonecam version %s":                               "zonecam バージョン %s",
		"Not built in: %s (requires the withcv build tag)": "未組み込み: %s (withcv ビルドタグが必要です)",

		// Flags
		"YAML configuration file":                              "YAML 設定ファイル",
		"Capture backend (ffmpeg, opencv)":                     "キャプチャバックエンド (ffmpeg, opencv)",
		"Requested frame size, e.g. 640x480":                   "要求するフレームサイズ (例: 640x480)",
		"Frame rate announced for devices (0 = measure)":       "デバイスに通知するフレームレート (0 = 計測)",
		"Path to the ffmpeg executable":                        "ffmpeg 実行ファイルのパス",
		"Mirror the preview horizontally":                      "プレビューを左右反転します",
		"Pause between frames in milliseconds":                 "フレーム間の待機時間 (ミリ秒)",
		"Run without a preview window":                         "プレビューウィンドウなしで実行します",
		"Do not draw tracking feedback on frames":              "フレームに追跡結果を描画しません",
		"Directory for snapshots and recordings":               "スナップショットと録画の保存先",
		"Ignore the snapshot key":                              "スナップショットキーを無効にします",
		"Record to this file from the start":                   "開始時からこのファイルに録画します",
		"Codec tag for recordings (I420, MJPG, XVID, H264...)": "録画のコーデックタグ (I420, MJPG, XVID, H264...)",
		"Write a Markdown session summary to this file":        "セッションのサマリーを Markdown で書き出します",
		"Log level (debug, info, warn, error)":                 "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                              "ログ出力をすべて抑制します",
		"Tracking algorithm":                                   "追跡アルゴリズム",
		"Number of zones (1 to 3)":                             "ゾーン数 (1〜3)",
		"Top of the zones in pixels":                           "ゾーン上端の位置 (ピクセル)",
		"Zone width in pixels":                                 "ゾーンの幅 (ピクセル)",
		"Zone height in pixels":                                "ゾーンの高さ (ピクセル)",
		"Frames before tracking is reported ready":             "追跡準備完了とみなすまでのフレーム数",

		// Summary
		"Session Summary":     "セッションサマリー",
		"Session":             "セッション",
		"Generated":           "生成日時",
		"2006-01-02 15:04:05": "2006年01月02日 15:04:05",
		"Source":              "ソース",
		"Backend":             "バックエンド",
		"Frame Size":          "フレームサイズ",
		"Announced FPS":       "公称 FPS",
		"Unknown":             "不明",
		"Timing":              "計測",
		"Duration":            "所要時間",
		"Frames":              "フレーム数",
		"Measured FPS":        "実測 FPS",
		"Std Dev":             "標準偏差",
		"Stable":              "安定",
		"Yes":                 "はい",
		"No":                  "いいえ",
		"Tracking":            "追跡",
		"Algorithm":           "アルゴリズム",
		"Ready":               "準備完了",
		"Initial":             "初期位置",
		"Final":               "最終位置",
		"Delta":               "変位",
		"State":               "状態",
		"Tracked":             "追跡中",
		"Lost":                "喪失",
		"Untracked":           "未捕捉",
		"Outputs":             "出力",
		"Snapshot":            "スナップショット",
		"Video":               "動画",
	})
}
