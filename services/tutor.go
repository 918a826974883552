package services

import (
	goContext "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/excel-master-lab/excel_quest_api/model"
)

// tutorSystemPrompt sets the tutor's role: a Traditional Chinese Excel teacher
// that guides rather than hands out answers, replying in Markdown.
const tutorSystemPrompt = `你是一位友善、樂於助人的 Microsoft Excel 教師，專注於解答 Excel 相關問題。請用繁體中文回答問題，並避免使用簡體字。
你會根據學習科學原則，循序漸進地引導學生學習。

請使用 Markdown 格式來組織你的回覆：標題、列表、**粗體**、` + "`code`" + ` 標示函數或公式、引用區塊顯示重要提示。

本平台共有5個關卡：基礎函數入門、IF 條件函數、樞紐分析表、VLOOKUP 函數、綜合測驗。完成練習可獲得星星和經驗值，星星可用於兌換獎勵。

教學策略：
1. 理解學生的問題，必要時提出問題引導思考。
2. 分步指導，提供提示和線索，不要直接給出答案。
3. 鼓勵學生嘗試不同方法並分析結果。
4. 將複雜任務分解成小步驟，一次只提出一個問題。

限制：如果學生偏離主題，請溫和地將他們引導回 Excel 相關話題。每次回覆都必須使用 Markdown 格式。`

// Canned Markdown replies for error classes the original client surfaces to
// the learner directly.
const (
	tutorMsgUnavailable  = "# 系統錯誤\n\n> 抱歉，AI 助教目前無法使用。請確認系統設定是否正確。"
	tutorMsgInvalidKey   = "# 錯誤：API 金鑰無效\n\n> 抱歉，AI 助教的 API 金鑰無效。請聯繫系統管理員。"
	tutorMsgModelMissing = "# 錯誤：模型不可用\n\n> 抱歉，AI 模型暫時無法使用。請聯繫系統管理員檢查模型配置。"
	tutorMsgNoPermission = "# 錯誤：權限不足\n\n> 抱歉，目前沒有權限使用此 AI 模型。請聯繫系統管理員確認 API 金鑰權限。"
	tutorMsgQuota        = "# 使用量超額\n\n> 抱歉，我們已經達到了使用額度限制。請稍後再試。\n\n您仍然可以繼續使用本系統的其他功能。"
	tutorMsgGeneric      = "# 系統錯誤\n\n> 抱歉，我現在無法回應。請稍後再試。"
)

// TutorService is the client for the AI tutoring backend. Transient failures
// are retried with exponential backoff; credential and model errors fail
// immediately with their own learner-facing message.
type TutorService struct {
	context.DefaultService

	client *genai.Client
	model  string
	apiKey string
	retry  RetryConfig
}

const TUTOR_SVC = "tutor_svc"

func (svc TutorService) Id() string {
	return TUTOR_SVC
}

func (svc *TutorService) Configure(ctx *context.Context) error {
	svc.apiKey = os.Getenv("GEMINI_API_KEY")

	svc.model = os.Getenv("GEMINI_MODEL")
	if svc.model == "" {
		svc.model = "gemini-2.5-flash-lite"
	}

	svc.retry = DefaultRetryConfig()
	return svc.DefaultService.Configure(ctx)
}

func (svc *TutorService) Start() error {
	if svc.apiKey == "" {
		log.Println("GEMINI_API_KEY not set, tutor replies will be unavailable")
		return nil
	}
	if !isValidGeminiKey(svc.apiKey) {
		return fmt.Errorf("invalid Gemini API key format")
	}

	client, err := genai.NewClient(goContext.Background(), &genai.ClientConfig{
		APIKey:  svc.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	svc.client = client
	return nil
}

// Gemini API keys start with "AIza".
func isValidGeminiKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "AIza") && len(apiKey) > 30
}

// Reply generates a tutor answer for a student message. The returned string is
// always renderable Markdown: classified failures come back as their canned
// message with a nil error so the chat flow keeps working.
func (svc *TutorService) Reply(ctx goContext.Context, lesson *model.Lesson, history []model.ChatMessage, message string, image []byte, imageMIME string) (string, error) {
	if svc.client == nil {
		return tutorMsgUnavailable, nil
	}

	prompt := svc.buildPrompt(lesson, history, message)

	parts := []*genai.Part{{Text: prompt}}
	if len(image) > 0 {
		if imageMIME == "" || !strings.HasPrefix(imageMIME, "image/") {
			return "# 錯誤：圖片格式不正確\n\n> 抱歉，無法解析圖片格式。", nil
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: imageMIME, Data: image},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: tutorSystemPrompt}}},
	}

	text, err := retryWithBackoff(ctx, svc.retry, isRetriableTutorError, func() (string, error) {
		result, err := svc.client.Models.GenerateContent(ctx, svc.model, contents, config)
		if err != nil {
			return "", err
		}
		if result == nil || result.Text() == "" {
			return "", fmt.Errorf("empty tutor response")
		}
		return result.Text(), nil
	})
	if err != nil {
		recordTutorRequest("error")
		log.Printf("Tutor request failed: %v", err)
		return classifyTutorError(err), nil
	}

	recordTutorRequest("ok")
	return text, nil
}

// buildPrompt folds the lesson context and prior conversation into a single
// prompt, the same shape the original client sends.
func (svc *TutorService) buildPrompt(lesson *model.Lesson, history []model.ChatMessage, message string) string {
	var b strings.Builder

	if lesson != nil {
		fmt.Fprintf(&b, "當前課程資訊：\n第 %d 關：%s\n%s\n練習題目：%s\n\n",
			lesson.OrderNumber, lesson.Title, lesson.Description, lesson.Question.Description)
	}

	for _, msg := range history {
		if msg.IsUser {
			b.WriteString("學生：")
		} else {
			b.WriteString("AI助教：")
		}
		b.WriteString(msg.MessageContent)
		b.WriteString("\n\n")
	}

	b.WriteString("學生：")
	b.WriteString(message)
	b.WriteString("\n\nAI助教：")
	return b.String()
}

// isRetriableTutorError: rate limits and availability problems are worth
// retrying; credential, model and permission errors are not.
func isRetriableTutorError(err error) bool {
	if errors.Is(err, goContext.Canceled) || errors.Is(err, goContext.DeadlineExceeded) {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
			return true
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusBadRequest:
			return false
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "API_KEY_INVALID") ||
		strings.Contains(msg, "PERMISSION_DENIED") ||
		strings.Contains(msg, "not supported") {
		return false
	}

	// Unknown errors (network etc.) are treated as transient.
	return true
}

// classifyTutorError maps a terminal error to its learner-facing message.
func classifyTutorError(err error) string {
	msg := err.Error()

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return tutorMsgInvalidKey
		case http.StatusForbidden:
			return tutorMsgNoPermission
		case http.StatusNotFound:
			return tutorMsgModelMissing
		case http.StatusTooManyRequests:
			return tutorMsgQuota
		}
	}

	switch {
	case strings.Contains(msg, "API_KEY_INVALID"):
		return tutorMsgInvalidKey
	case strings.Contains(msg, "PERMISSION_DENIED"):
		return tutorMsgNoPermission
	case strings.Contains(msg, "not found"), strings.Contains(msg, "not supported"):
		return tutorMsgModelMissing
	case strings.Contains(msg, "429"), strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return tutorMsgQuota
	default:
		return tutorMsgGeneric
	}
}
