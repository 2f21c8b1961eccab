package ai

// systemPromptCompletion turns chat-style models into plain prompt
// continuation, which is what the assistant's templates are written for.
const systemPromptCompletion = `You continue documents. The user message is the beginning of a document; reply with only the text that comes next, exactly as it would appear in the document.

Guidelines:
- Do not repeat the document or add commentary
- Follow the format of the worked examples in the document
- When the document ends inside a code block, reply with the rest of the code block only`
