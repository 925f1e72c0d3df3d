package model

// UnknownYear 上映年份未知时使用的占位值
const UnknownYear = "0000"

// UntitledMovie 片名缺失时使用的占位值
const UntitledMovie = "제목 없음"

// MovieRecord 电影目录中的一条原始记录（由抓取脚本写入 JSON 文件）
type MovieRecord struct {
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseYear string `json:"release_year"`
	MoodLabels  Tags   `json:"mood_labels"`
	GenreID     *int   `json:"genre_id,omitempty"`
}

// MovieDetail 按片名查询并打上情绪标签后的电影信息
type MovieDetail struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseYear string `json:"release_year"`
	PosterPath  string `json:"poster_path"`
	MoodLabels  Tags   `json:"mood_labels"`
}

// ReleaseYearFromDate 从 "2006-01-02" 形式的日期中截取年份
func ReleaseYearFromDate(date string) string {
	if len(date) < 4 {
		return UnknownYear
	}
	return date[:4]
}
