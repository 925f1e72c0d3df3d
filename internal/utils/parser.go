package utils

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/user/moodpick/internal/model"
)

const codeFence = "```"

// StripCodeFence 去掉模型输出首尾的代码块标记
// 支持 ```json / ```JSON / ``` 等开头，以及结尾的 ```
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, codeFence) {
		text = text[len(codeFence):]
		// 跳过紧跟在 ``` 后面的语言名
		if n := languageTagLen(text); n > 0 {
			rest := text[n:]
			if rest == "" || rest[0] == '\n' || rest[0] == '\r' || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '[' {
				text = rest
			}
		}
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, codeFence)
	return strings.TrimSpace(text)
}

func languageTagLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' || c == '+' {
			n++
			continue
		}
		break
	}
	return n
}

// ParseTagArray 解析模型返回的 JSON 字符串数组（先去掉代码块标记）
func ParseTagArray(raw string) (model.Tags, error) {
	var tags []string
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &tags); err != nil {
		return model.Tags{}, err
	}
	if tags == nil {
		return model.Tags{}, nil
	}
	return model.Tags(tags), nil
}
