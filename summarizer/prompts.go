package summarizer

const positivePrompt = `You are an expert customer experience analyst.
Your task is to analyze the following POSITIVE customer feedback and identify the main strengths appreciated by customers.

Provide a concise, business-oriented summary in exactly 3 bullet points covering:
1. The top recurring points or aspects customers praised.
2. The underlying strengths or reasons behind this positive sentiment (e.g. product quality, service experience, brand trust).
3. The opportunities for the brand to further capitalize on these strengths.

Be objective, avoid repetition, and use short, impactful sentences.

POSITIVE CUSTOMER FEEDBACK:
%s`

const negativePrompt = `You are an expert customer experience analyst.
Your task is to analyze the following NEGATIVE customer feedback and identify the most common pain points.

Provide a concise, business-oriented summary in exactly 3 bullet points covering:
1. The top recurring complaints or issues customers mentioned.
2. The underlying cause or pattern behind these issues (if visible).
3. The potential impact or area of improvement for the brand.

Be objective, avoid repetition, and use short, impactful sentences.

NEGATIVE CUSTOMER FEEDBACK:
%s`

const suggestionPrompt = `You are a product strategist. Read the following customer suggestions and feature requests
and analyze the underlying needs and ideas.

Based only on these comments, provide a summary in exactly 3 bullet points covering:
1. Top suggestions: the most common or impactful ideas users are asking for.
2. Underlying needs: the problem each group of ideas is trying to solve.
3. Future opportunities: new features or directions the company should consider.

Group similar ideas together.

CUSTOMER SUGGESTIONS:
%s`
