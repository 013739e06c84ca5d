// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/observability"
	"github.com/AleutianAI/PolicyDesk/services/extract"
)

// maxAudioBytes caps dictation uploads. Field dictation clips are a few
// seconds of audio, so 25MB leaves generous headroom.
const maxAudioBytes = 25 << 20

// Dictate handles POST /v1/dictate. The request carries one audio clip
// as multipart field "audio"; the response is the raw transcript, which
// the client drops into whichever form field has focus.
func Dictate(transcriber extract.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'audio' is required"})
			return
		}
		defer file.Close()

		if header.Size > maxAudioBytes {
			c.JSON(http.StatusRequestEntityTooLarge,
				gin.H{"error": "audio exceeds the 25MB limit"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
		if err != nil {
			slog.Error("failed to read dictation upload", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audio"})
			return
		}

		text, err := transcriber.Transcribe(c.Request.Context(), data, header.Filename)
		if err != nil {
			slog.Error("transcription failed", "filename", header.Filename, "error", err)
			observability.RecordDictation("http", false)
			c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
			return
		}

		observability.RecordDictation("http", true)
		c.JSON(http.StatusOK, gin.H{"text": text})
	}
}

var dictateUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The service sits behind the operator's own deployment; origin
	// policy is enforced at the edge, not here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsControl is a client text frame on the dictation socket. The only
// recognized action is "stop", which closes out the clip in progress.
type wsControl struct {
	Action string `json:"action"`
}

// DictateStream handles GET /v1/dictate/ws. The client streams one clip
// as binary audio chunks and finishes it with a {"action":"stop"} text
// frame; the server concatenates the chunks, transcribes once, and
// replies with a JSON text message holding the transcript. No partial
// results are sent. The buffer resets after each reply, so one socket
// can carry one clip per form field for the whole session.
func DictateStream(transcriber extract.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := dictateUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade dictation websocket", "error", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxAudioBytes)

		slog.Info("dictation websocket opened", "remote", conn.RemoteAddr().String())
		var clip []byte
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Warn("dictation websocket closed unexpectedly", "error", err)
				}
				return
			}

			switch msgType {
			case websocket.BinaryMessage:
				if len(clip)+len(data) > maxAudioBytes {
					observability.RecordDictation("websocket", false)
					clip = nil
					if werr := conn.WriteJSON(gin.H{"error": "clip exceeds the 25MB limit"}); werr != nil {
						return
					}
					continue
				}
				clip = append(clip, data...)

			case websocket.TextMessage:
				var ctrl wsControl
				if json.Unmarshal(data, &ctrl) != nil || ctrl.Action != "stop" {
					// Unknown control chatter; the clip keeps accumulating.
					continue
				}
				if len(clip) == 0 {
					if werr := conn.WriteJSON(gin.H{"error": "no audio received before stop"}); werr != nil {
						return
					}
					continue
				}

				text, err := transcriber.Transcribe(c.Request.Context(), clip, "clip.webm")
				clip = nil
				if err != nil {
					slog.Error("streamed transcription failed", "error", err)
					observability.RecordDictation("websocket", false)
					if werr := conn.WriteJSON(gin.H{"error": "transcription failed"}); werr != nil {
						return
					}
					continue
				}

				observability.RecordDictation("websocket", true)
				if err := conn.WriteJSON(gin.H{"text": text}); err != nil {
					slog.Warn("failed to write transcript to websocket", "error", err)
					return
				}
			}
		}
	}
}
