package service

// 提示词属于配置，不参与核心逻辑

const queryTagSystemPrompt = "당신은 사용자의 영화 요청에서 원하는 분위기를 뽑아내는 태깅 어시스턴트입니다. 출력은 JSON 배열 형식만, 코드블럭 없이."

const queryTagUserPrompt = `요청: "%s"

이 요청이 원하는 영화의 분위기나 장르를 나타내는 키워드를 2~4개 뽑아주세요.
예: 감동, 무서운, 유쾌한, 따뜻한, 잔잔한, 우울한, 자극적인 등
형식: ["키워드1", "키워드2"] 형태의 JSON 배열로만 출력하세요.`

const catalogTagSystemPrompt = "당신은 영화 분위기를 분석하는 태깅 어시스턴트입니다. 출력은 JSON 배열 형식만, 코드블럭 없이."

const catalogTagUserPrompt = `줄거리: "%s"

이 영화의 분위기를 가장 잘 나타내는 키워드를 2~3개 뽑아주세요.
예: 감동, 무서운, 유쾌한, 따뜻한, 잔잔한, 우울한, 자극적인 등
형식: ["키워드1", "키워드2"] 형태의 JSON 배열로만 출력하세요.
코드블럭(예: ` + "```json" + `)은 포함하지 마세요.`

const narrativeSystemPrompt = "당신은 영화 추천을 도와주는 조력자입니다. 각 영화는 반드시 🎬 로 시작하는 줄에서 소개하세요."

const narrativeUserPrompt = `사용자 요청: "%s"
분위기 태그: %s

아래 후보 영화들을 사용자에게 추천하는 글을 써 주세요.
각 영화마다 🎬 제목 (연도) 로 시작하고, 요청과 어울리는 이유를 한두 문장으로 설명하세요.

%s`
