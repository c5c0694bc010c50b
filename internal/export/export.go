// 包 export 负责单次模式导出：将回顾载荷写为带缩进的 JSON 文件。
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"go-film-recap/internal/model"
)

// ToJSONFile 将一份回顾写入 path（带缩进格式，便于人读与 diff）。
func ToJSONFile(rec *model.Recap, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}
