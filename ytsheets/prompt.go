package ytsheets

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompt - синхронный запрос строки у пользователя
type Prompt func(ctx context.Context, label string) (string, error)

// ConsolePrompt - вопрос в out, ответ одной строкой из in
func ConsolePrompt(in io.Reader, out io.Writer) Prompt {
	var reader = bufio.NewReader(in)
	return func(ctx context.Context, label string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(out, label)
		line, err := reader.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}
