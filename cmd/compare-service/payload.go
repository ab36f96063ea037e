package main

import (
	"encoding/base64"
	"fmt"
)

const comparisonPrompt = `

The Monday and Friday images above are screenshots of a task list. Compare the two groups and report:

1. **Tasks that exist only on Monday**:
   - task title and progress (percentage only)

2. **Tasks that exist only on Friday**:
   - task title and progress (percentage only)

3. **Tasks present on both days whose state changed**:
   - task title and the concrete change (progress, status, and so on)

4. **Tasks present on both days with the same state**:
   - list of task titles

**Important instructions:**
- When showing progress never write "in progress"; show the percentage (%) only.
- Example: "(30% in progress)" → "(30%)"
- Name every task exactly and state its status for each item.
- Ignore design and colors; analyze only the task contents and the differences in their progress.
`

func textBlock(text string) contentBlock {
	return contentBlock{Type: "text", Text: text}
}

func imageBlock(img groupImage) contentBlock {
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = mediaTypeFor(img.Name)
	}
	return contentBlock{
		Type: "image",
		Source: &imageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(img.Data),
		},
		raw: img.Data,
	}
}

// buildComparisonBlocks lays out the user message: intro, monday images,
// transition, friday images, prompt. It always yields
// 1 + len(monday) + 1 + len(friday) + 1 blocks.
func buildComparisonBlocks(monday, friday []groupImage) []contentBlock {
	blocks := make([]contentBlock, 0, len(monday)+len(friday)+3)
	blocks = append(blocks, textBlock(fmt.Sprintf("Please analyze the following images.\n\nMonday group (%d images):", len(monday))))
	for _, img := range monday {
		blocks = append(blocks, imageBlock(img))
	}
	blocks = append(blocks, textBlock(fmt.Sprintf("\nFriday group (%d images):", len(friday))))
	for _, img := range friday {
		blocks = append(blocks, imageBlock(img))
	}
	blocks = append(blocks, textBlock(comparisonPrompt))
	return blocks
}
