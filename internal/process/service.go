// Package process はアップロード受付からジョブ投入・参照までのAPI境界を提供します。
package process

import (
	"errors"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yourusername/file-mill/internal/jobs"
	"github.com/yourusername/file-mill/internal/telemetry"
)

// Service は Registry と Controller を束ね、ジョブの投入と参照を提供します。
type Service struct {
	registry   *jobs.Registry
	controller *jobs.Controller
}

// NewService は Service を初期化します。
func NewService(registry *jobs.Registry, controller *jobs.Controller) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry is nil")
	}
	if controller == nil {
		return nil, errors.New("controller is nil")
	}
	return &Service{
		registry:   registry,
		controller: controller,
	}, nil
}

// Submit は検証済みのファイル一覧とフラグからジョブを作成し、
// ライフサイクルの実行を開始します。
func (s *Service) Submit(files []jobs.FileInfo, flags []string) (jobs.Record, error) {
	if len(files) == 0 {
		return jobs.Record{}, newError("INVALID_INPUT", "処理対象のファイルがありません。", nil)
	}
	record := s.registry.Create(files, flags)
	s.controller.Launch(record.JobID)
	telemetry.UploadsReceived.Inc()
	return record, nil
}

// Find はジョブ情報を取得します。
func (s *Service) Find(jobID string) (jobs.Record, bool) {
	return s.registry.Get(jobID)
}

// Snapshot は全ジョブのスナップショットを返します。
func (s *Service) Snapshot() []jobs.Record {
	return s.registry.List()
}

// Reset は全ジョブを削除し、削除件数を返します。
func (s *Service) Reset() int {
	return s.registry.Clear()
}

// buildFileInfo はアップロードファイル1件からメタデータを作成します。
// メディアタイプは内容から判定し、判定できない場合はヘッダーの値を使います。
func buildFileInfo(header *multipart.FileHeader) (jobs.FileInfo, error) {
	info := jobs.FileInfo{
		Name: header.Filename,
		Size: header.Size,
	}

	file, err := header.Open()
	if err != nil {
		return jobs.FileInfo{}, newError("INTERNAL_ERROR", "アップロードファイルの読み込みに失敗しました。", err)
	}
	defer file.Close()

	if detected, err := mimetype.DetectReader(file); err == nil {
		info.MediaType = detected.String()
	}
	if info.MediaType == "" || info.MediaType == "application/octet-stream" {
		if declared := header.Header.Get("Content-Type"); declared != "" {
			info.MediaType = declared
		}
	}
	if info.MediaType == "" {
		info.MediaType = "application/octet-stream"
	}
	return info, nil
}
