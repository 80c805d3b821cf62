package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "parse_error":
			return "解析エラー"
		case "type_mismatch":
			return "型が不正です"
		case "required_field_missing":
			return "必須プロパティが不足しています"
		case "invalid_format":
			return "フォーマットが不正です"
		case "pattern_mismatch":
			return "パターンに一致しません"
		case "enum_violation":
			return "許可された値ではありません"
		case "minimum_violation":
			return "最小値を下回っています"
		case "maximum_violation":
			return "最大値を超えています"
		case "min_length_violation":
			return "短すぎます"
		case "max_length_violation":
			return "長すぎます"
		case "additional_property_not_allowed":
			return "未知のキーです"
		case "deprecated":
			return "非推奨のプロパティです"
		}
	default: // "en"
		switch code {
		case "parse_error":
			return "parse error"
		case "type_mismatch":
			return "invalid type"
		case "required_field_missing":
			return "required property missing"
		case "invalid_format":
			return "invalid format"
		case "pattern_mismatch":
			return "does not match pattern"
		case "enum_violation":
			return "not an allowed value"
		case "minimum_violation":
			return "below the minimum"
		case "maximum_violation":
			return "above the maximum"
		case "min_length_violation":
			return "too short"
		case "max_length_violation":
			return "too long"
		case "additional_property_not_allowed":
			return "unknown key"
		case "deprecated":
			return "deprecated property"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
