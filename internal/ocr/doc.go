// Package ocr defines the contract between the analysis pipeline and an OCR
// engine. The pipeline does not care which engine produced a result: any
// provider that returns transcribed text plus word regions with bounding
// boxes and confidences can be plugged in. The gosseract-backed Tesseract
// provider lives in the tesseract subpackage and registers itself as the
// default engine on import.
package ocr
