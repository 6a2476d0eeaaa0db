package view

import "anamnesa/internal/domain"

const (
	labelNextQuestion = "Pertanyaan Selanjutnya"
	labelFinish       = "Selesai & Lihat Hasil"
	labelDone         = "Selesai"
)

// StatusMessage is the status line shown for a transition reason.
func StatusMessage(reason domain.Reason) string {
	switch reason {
	case domain.ReasonStarting:
		return "Memuat wawancara..."
	case domain.ReasonInterviewLoaded, domain.ReasonNextQuestion:
		return "Klik untuk mulai merekam jawaban"
	case domain.ReasonLoadFailed:
		return "Gagal memuat wawancara."
	case domain.ReasonRecordingStarted:
		return "Sedang merekam... (Klik lagi untuk berhenti)"
	case domain.ReasonMicFailed:
		return "Gagal akses mikrofon."
	case domain.ReasonRecordingDiscarded:
		return "Rekaman dibatalkan."
	case domain.ReasonUploading:
		return "Memproses jawaban..."
	case domain.ReasonRecordingEmpty:
		return "Rekaman kosong, silakan rekam ulang."
	case domain.ReasonUploadFailed:
		return "Gagal mengirim data."
	case domain.ReasonAnswerReady:
		return "Jawaban terekam."
	case domain.ReasonRetryRequested:
		return "Silakan rekam ulang."
	case domain.ReasonAnalyzing:
		return "Sedang menganalisis semua jawaban..."
	case domain.ReasonSummaryReady:
		return "Ringkasan siap."
	case domain.ReasonSummaryFailed:
		return "Gagal membuat ringkasan."
	default:
		return ""
	}
}

// ErrorMessage is the user-facing text for an error code.
func ErrorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Aplikasi gagal dimulai."
	case domain.ErrorCodePermissionDenied:
		return "Gagal mengakses mikrofon. Pastikan izin diberikan."
	case domain.ErrorCodeDeviceUnavailable:
		return "Gagal akses mikrofon."
	case domain.ErrorCodeEmptyRecording:
		return "Rekaman kosong, silakan rekam ulang."
	case domain.ErrorCodeAudioStop:
		return "Perekaman tidak berhenti dengan bersih."
	case domain.ErrorCodeNetwork:
		return "Gagal mengirim data."
	case domain.ErrorCodeServer:
		if detail == "" {
			return "Server mengembalikan kesalahan."
		}
		return "Error: " + detail
	case domain.ErrorCodeProtocol:
		return "Respons server tidak valid."
	case domain.ErrorCodeLoad:
		return "Gagal memuat wawancara."
	case domain.ErrorCodePreview:
		return "Pratinjau transkrip tidak tersedia."
	case domain.ErrorCodeClipboard:
		return "Gagal menyalin ke clipboard."
	case domain.ErrorCodeInvalidState:
		return "Aksi tidak tersedia saat ini."
	default:
		if detail == "" {
			return "Terjadi kesalahan."
		}
		return detail
	}
}

// resultErrorMessage is shown in place of the summary when finishing fails.
func resultErrorMessage(code domain.ErrorCode) string {
	switch code {
	case domain.ErrorCodeNetwork:
		return "Terjadi kesalahan koneksi."
	case domain.ErrorCodeProtocol:
		return "Respons server tidak valid."
	default:
		return "Gagal membuat ringkasan."
	}
}
