// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 読み込み時のエラーは致命的なエラーとして返され、探索中の指標の縮退は警告として扱われます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("ensemble-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// DegenerateMetricErrorなどの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DegenerateMetricError は指標の分母がゼロになり計算できない場合の警告です。
// 探索は中断されず、Result の値（番兵値）がそのステップの性能として使われます。
type DegenerateMetricError struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *DegenerateMetricError) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %g due to %s", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateMetricError) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "DegenerateMetricError")
}

// NewDegenerateMetricError は新しいDegenerateMetricErrorを作成します。
func NewDegenerateMetricError(metric, condition string, result float64) *DegenerateMetricError {
	return &DegenerateMetricError{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	読み込み時のエラー型
//
// ===========================================================================

// FormatError はラベル行または予測行の形式が不正な場合のエラーです。
type FormatError struct {
	Source string // ファイル名など（不明な場合は空）
	Line   int    // 1始まりの行番号
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	src := e.Source
	if src == "" {
		src = "input"
	}
	return fmt.Sprintf("ensemble: %s:%d: malformed line %q: %s", src, e.Line, e.Text, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Int("line", e.Line).
		Str("text", e.Text).
		Str("reason", e.Reason).
		Str("type", "FormatError")
}

// NewFormatError は新しいFormatErrorを作成し、スタックトレースを付与します。
func NewFormatError(source string, line int, text, reason string) error {
	return errors.WithStack(&FormatError{Source: source, Line: line, Text: text, Reason: reason})
}

// SizeMismatchError は予測の件数とターゲットの件数が一致しない場合のエラーです。
type SizeMismatchError struct {
	Op       string
	Expected int
	Got      int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("ensemble: %s: size mismatch. Expected %d examples, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SizeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "SizeMismatchError")
}

// NewSizeMismatchError は新しいSizeMismatchErrorを作成し、スタックトレースを付与します。
func NewSizeMismatchError(op string, expected, got int) error {
	return errors.WithStack(&SizeMismatchError{Op: op, Expected: expected, Got: got})
}

// LibraryInconsistencyError は分割ごとの候補数が一致しない場合のエラーです。
type LibraryInconsistencyError struct {
	Split    string
	Expected int
	Got      int
}

func (e *LibraryInconsistencyError) Error() string {
	return fmt.Sprintf("ensemble: split %q has %d candidates, expected %d like every other split", e.Split, e.Got, e.Expected)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *LibraryInconsistencyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("split", e.Split).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "LibraryInconsistencyError")
}

// NewLibraryInconsistencyError は新しいLibraryInconsistencyErrorを作成し、スタックトレースを付与します。
func NewLibraryInconsistencyError(split string, expected, got int) error {
	return errors.WithStack(&LibraryInconsistencyError{Split: split, Expected: expected, Got: got})
}

// MissingTargetsError は分割にターゲットファイルが存在しない、または複数存在する場合のエラーです。
type MissingTargetsError struct {
	Split string
	Found int
}

func (e *MissingTargetsError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("ensemble: no targets file found in split %q", e.Split)
	}
	return fmt.Sprintf("ensemble: split %q has %d targets files, expected exactly one", e.Split, e.Found)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MissingTargetsError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("split", e.Split).
		Int("found", e.Found).
		Str("type", "MissingTargetsError")
}

// NewMissingTargetsError は新しいMissingTargetsErrorを作成し、スタックトレースを付与します。
func NewMissingTargetsError(split string, found int) error {
	return errors.WithStack(&MissingTargetsError{Split: split, Found: found})
}

// ValidationError は設定パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ensemble: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyLibrary は候補が一つもない場合のエラーです。
	ErrEmptyLibrary = New("empty candidate library")

	// ErrUnknownCandidate は存在しない候補IDが指定された場合のエラーです。
	ErrUnknownCandidate = New("unknown candidate")

	// ErrNotInEnsemble はアンサンブルに含まれていない候補を削除しようとした場合のエラーです。
	ErrNotInEnsemble = New("candidate is not in the ensemble")
)
